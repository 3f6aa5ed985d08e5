package watchpage

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"VidHub.com/pkg/errno"
	"github.com/cloudwego/hertz/pkg/app/client"
	"github.com/cloudwego/hertz/pkg/protocol"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
	"github.com/pkg/errors"
)

// Client VidHub HTTP API 客户端, token 为空时以匿名身份访问
type Client struct {
	baseURL string
	token   string
	hc      *client.Client
}

func NewClient(baseURL, token string) (*Client, error) {
	hc, err := client.NewClient()
	if err != nil {
		return nil, errors.Wrap(err, "new hertz client")
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), token: token, hc: hc}, nil
}

func (c *Client) Anonymous() bool {
	return c.token == ""
}

type envelope struct {
	Code    int64           `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// do 发送请求并解析统一响应, 业务错误还原为 errno.ErrNo
func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	req := protocol.AcquireRequest()
	resp := protocol.AcquireResponse()
	defer protocol.ReleaseRequest(req)
	defer protocol.ReleaseResponse(resp)

	req.SetRequestURI(c.baseURL + path)
	req.SetMethod(method)
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return errors.Wrap(err, "marshal request")
		}
		req.Header.SetContentTypeBytes([]byte("application/json"))
		req.SetBody(payload)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	if err := c.hc.Do(ctx, req, resp); err != nil {
		// 请求结果未知, 按存储暂时不可用处理
		return errors.WithStack(errno.TransientStoreErr.WithMessage(err.Error()))
	}
	if resp.StatusCode() != consts.StatusOK {
		return errors.WithStack(errno.ServiceErr.WithMessage(fmt.Sprintf("unexpected http status %d", resp.StatusCode())))
	}

	var env envelope
	if err := json.Unmarshal(resp.Body(), &env); err != nil {
		return errors.Wrap(err, "decode response")
	}
	if env.Code != errno.SuccessCode {
		return errors.WithStack(errno.NewErrNo(env.Code, env.Message))
	}
	if out == nil || len(env.Data) == 0 {
		return nil
	}
	return errors.Wrap(json.Unmarshal(env.Data, out), "decode data")
}
