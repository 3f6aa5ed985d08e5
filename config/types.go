package config

type config struct {
	Server     server     `yaml:"server" mapstructure:"server"`
	Database   database   `yaml:"database" mapstructure:"database"`
	Redis      redis      `yaml:"redis" mapstructure:"redis"`
	RabbitMq   rabbitmq   `yaml:"rabbitmq" mapstructure:"rabbitmq"`
	Jwt        jwt        `yaml:"jwt" mapstructure:"jwt"`
	Engagement engagement `yaml:"engagement" mapstructure:"engagement"`
	Reconcile  reconcile  `yaml:"reconcile" mapstructure:"reconcile"`
	Sentinel   sentinel   `yaml:"sentinel" mapstructure:"sentinel"`
}

type server struct {
	Addr         string   `yaml:"addr"`
	AllowOrigins []string `yaml:"allow_origins" mapstructure:"allow_origins"`
	PprofAddr    string   `yaml:"pprof_addr" mapstructure:"pprof_addr"`
}

// database.driver 取值 mysql 或 sqlite, sqlite 时只使用 Path
type database struct {
	Driver          string `yaml:"driver"`
	Addr            string `yaml:"addr"`
	Database        string `yaml:"database"`
	Username        string `yaml:"username"`
	Password        string `yaml:"password"`
	Charset         string `yaml:"charset"`
	Path            string `yaml:"path"`
	MaxOpenConns    int    `yaml:"max_open_conns" mapstructure:"max_open_conns"`
	MaxIdleConns    int    `yaml:"max_idle_conns" mapstructure:"max_idle_conns"`
	ConnMaxLifetime string `yaml:"conn_max_lifetime" mapstructure:"conn_max_lifetime"`
}

type redis struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type rabbitmq struct {
	Addr     string `yaml:"addr"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

type jwt struct {
	Secret string `yaml:"secret"`
	Issuer string `yaml:"issuer"`
}

type engagement struct {
	ViewSessionWindow string `yaml:"view_session_window" mapstructure:"view_session_window"`
	LockEnabled       bool   `yaml:"lock_enabled" mapstructure:"lock_enabled"`
	LockExpiry        string `yaml:"lock_expiry" mapstructure:"lock_expiry"`
	CounterCacheTTL   string `yaml:"counter_cache_ttl" mapstructure:"counter_cache_ttl"`
	FeedDefaultLimit  int    `yaml:"feed_default_limit" mapstructure:"feed_default_limit"`
	FeedMaxLimit      int    `yaml:"feed_max_limit" mapstructure:"feed_max_limit"`
}

type reconcile struct {
	Interval       string `yaml:"interval"`
	BatchSize      int    `yaml:"batch_size" mapstructure:"batch_size"`
	ActiveWindow   string `yaml:"active_window" mapstructure:"active_window"`
	RetentionDays  int    `yaml:"retention_days" mapstructure:"retention_days"`
	HealthInterval string `yaml:"health_interval" mapstructure:"health_interval"`
}

type sentinel struct {
	WriteQPS float64 `yaml:"write_qps" mapstructure:"write_qps"`
}
