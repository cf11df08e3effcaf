package conf

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Duration 包装 time.Duration，支持 toml 中以 "10m" 等字符串形式配置
type Duration string

// Duration 解析配置值，解析失败返回 0
func (d Duration) Duration() time.Duration {
	v, err := time.ParseDuration(string(d))
	if err != nil {
		return 0
	}
	return v
}

// Bootstrap 全局配置
type Bootstrap struct {
	BuildVersion string `toml:"-"` // 编译时注入的版本号
	Server       Server `toml:"server"`
	Data         Data   `toml:"data"`
}

type Server struct {
	Debug    bool           `toml:"debug"`
	HTTP     HTTP           `toml:"http"`
	Timeslot ServerTimeslot `toml:"timeslot"`
	Request  ServerRequest  `toml:"request"`
}

type HTTP struct {
	Port  int   `toml:"port"`
	PProf PProf `toml:"pprof"`
}

type PProf struct {
	Enabled   bool     `toml:"enabled"`
	AccessIps []string `toml:"access_ips"`
}

// ServerTimeslot 在场时段跟踪配置
type ServerTimeslot struct {
	// IdleTimeout 触发静默多久后关闭打开的时段，默认 10 分钟
	IdleTimeout Duration `toml:"idle_timeout"`
	// SweepDisabled 为 true 时不启动内置的定时关闭协程，
	// 由外部 cron 调用 /cron/close_timeslots 触发
	SweepDisabled bool     `toml:"sweep_disabled"`
	SweepInterval Duration `toml:"sweep_interval"`
}

// ServerRequest 请求审计留痕配置
type ServerRequest struct {
	// RetainDays 审计记录保留天数，<=0 表示不清理
	RetainDays int `toml:"retain_days"`
}

type Data struct {
	Database Database `toml:"database"`
}

type Database struct {
	Dsn             string   `toml:"dsn"`
	MaxIdleConns    int32    `toml:"max_idle_conns"`
	MaxOpenConns    int32    `toml:"max_open_conns"`
	ConnMaxLifetime Duration `toml:"conn_max_lifetime"`
	SlowThreshold   Duration `toml:"slow_threshold"`
}

// IdleTimeout 静默关闭阈值，未配置时取默认值 10 分钟
func (s ServerTimeslot) IdleTimeoutOrDefault() time.Duration {
	if v := s.IdleTimeout.Duration(); v > 0 {
		return v
	}
	return 10 * time.Minute
}

// SweepIntervalOrDefault 定时关闭协程的执行间隔，默认 1 分钟
func (s ServerTimeslot) SweepIntervalOrDefault() time.Duration {
	if v := s.SweepInterval.Duration(); v > 0 {
		return v
	}
	return time.Minute
}

// SetupConfig 读取 toml 配置文件，文件不存在时写入默认配置
func SetupConfig(bc *Bootstrap, path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		setDefault(bc)
		return writeDefault(bc, path)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	if err := toml.Unmarshal(b, bc); err != nil {
		return fmt.Errorf("unmarshal config: %w", err)
	}
	setDefault(bc)
	return nil
}

func setDefault(bc *Bootstrap) {
	if bc.Server.HTTP.Port == 0 {
		bc.Server.HTTP.Port = 15123
	}
	if bc.Data.Database.Dsn == "" {
		bc.Data.Database.Dsn = "presence.db"
	}
	if bc.Data.Database.MaxIdleConns == 0 {
		bc.Data.Database.MaxIdleConns = 10
	}
	if bc.Data.Database.MaxOpenConns == 0 {
		bc.Data.Database.MaxOpenConns = 100
	}
	if bc.Data.Database.ConnMaxLifetime == "" {
		bc.Data.Database.ConnMaxLifetime = "6h"
	}
	if bc.Data.Database.SlowThreshold == "" {
		bc.Data.Database.SlowThreshold = "200ms"
	}
	if bc.Server.Timeslot.IdleTimeout == "" {
		bc.Server.Timeslot.IdleTimeout = "10m"
	}
	if bc.Server.Timeslot.SweepInterval == "" {
		bc.Server.Timeslot.SweepInterval = "1m"
	}
}

func writeDefault(bc *Bootstrap, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	b, err := toml.Marshal(bc)
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o644)
}
