package service

import (
	"context"

	"github.com/pkg/errors"
)

// ListPublishedVideos 首页视频流: 仅已发布视频, 最新在前
func (s *VideoService) ListPublishedVideos(ctx context.Context, limit, offset int) ([]*VideoItem, error) {
	if offset < 0 {
		offset = 0
	}
	videos, err := s.store.ListPublishedVideos(ctx, s.normalizeLimit(limit), offset)
	if err != nil {
		return nil, errors.WithMessage(err, "dao.ListPublishedVideos failed")
	}

	creatorIDs := make([]string, 0, len(videos))
	for _, v := range videos {
		creatorIDs = append(creatorIDs, v.CreatorID)
	}
	creators, err := s.store.GetProfilesByIDs(ctx, creatorIDs)
	if err != nil {
		return nil, errors.WithMessage(err, "dao.GetProfilesByIDs failed")
	}

	items := make([]*VideoItem, 0, len(videos))
	for _, v := range videos {
		items = append(items, newVideoItem(v, creators[v.CreatorID]))
	}
	return items, nil
}
