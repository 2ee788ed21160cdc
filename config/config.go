package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config 服务端配置：监听、日志、规则与关卡布局（关卡已是解析好的节点/豆子数据）
type Config struct {
	Server ServerConfig `yaml:"server" json:"server"`
	Log    LogConfig    `yaml:"log" json:"log"`
	Rules  RulesConfig  `yaml:"rules" json:"rules"`
	Level  LevelConfig  `yaml:"level" json:"level"`
}

type ServerConfig struct {
	Addr        string `yaml:"addr" json:"addr"`
	TickRate    int    `yaml:"tick_rate" json:"tick_rate"`
	DefaultRoom string `yaml:"default_room" json:"default_room"`
	StaticDir   string `yaml:"static_dir" json:"static_dir"`
}

// LogConfig zap + lumberjack 滚动文件参数
type LogConfig struct {
	File       string `yaml:"file" json:"file"`
	Level      string `yaml:"level" json:"level"`
	MaxSizeMB  int    `yaml:"max_size_mb" json:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups" json:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days" json:"max_age_days"`
	Compress   bool   `yaml:"compress" json:"compress"`
	Console    bool   `yaml:"console" json:"console"`
}

type RulesConfig struct {
	SnapThreshold   float64 `yaml:"snap_threshold" json:"snap_threshold"`
	PickupThreshold float64 `yaml:"pickup_threshold" json:"pickup_threshold"`
	HighScore       int     `yaml:"high_score" json:"high_score"`
}

// LevelConfig 关卡：命名导航图（不同角色可用不同的图）、豆子、角色与玩家名
type LevelConfig struct {
	Graphs   map[string]GraphConfig `yaml:"graphs" json:"graphs"`
	Dots     []DotConfig            `yaml:"dots" json:"dots"`
	Entities []EntityConfig         `yaml:"entities" json:"entities"`
	Player   string                 `yaml:"player" json:"player"`
}

type GraphConfig struct {
	Nodes []NodeConfig `yaml:"nodes" json:"nodes"`
}

// NodeConfig 节点坐标 + 方向名到邻居下标的映射，例如 {left: 3, up: 7}
type NodeConfig struct {
	X         float64        `yaml:"x" json:"x"`
	Y         float64        `yaml:"y" json:"y"`
	Neighbors map[string]int `yaml:"neighbors" json:"neighbors"`
}

type DotConfig struct {
	X     float64 `yaml:"x" json:"x"`
	Y     float64 `yaml:"y" json:"y"`
	Score int     `yaml:"score" json:"score"`
}

type EntityConfig struct {
	Name      string  `yaml:"name" json:"name"`
	Graph     string  `yaml:"graph" json:"graph"`
	X         float64 `yaml:"x" json:"x"`
	Y         float64 `yaml:"y" json:"y"`
	Speed     float64 `yaml:"speed" json:"speed"`
	Direction string  `yaml:"direction" json:"direction"`
	// Node 出生时强制关联的节点；为空则按位置吸附
	Node *int `yaml:"node" json:"node,omitempty"`
}

var ErrInvalidConfig = errors.New("invalid config")

func (c *Config) ApplyDefaults() {
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Server.TickRate <= 0 {
		c.Server.TickRate = 60
	}
	if c.Server.DefaultRoom == "" {
		c.Server.DefaultRoom = "room-1"
	}
	if c.Server.StaticDir == "" {
		c.Server.StaticDir = "web"
	}
	if c.Log.File == "" {
		c.Log.File = "app.log"
	}
	if c.Log.Level == "" {
		c.Log.Level = "debug"
	}
	if c.Log.MaxSizeMB <= 0 {
		c.Log.MaxSizeMB = 10
	}
	if c.Log.MaxBackups <= 0 {
		c.Log.MaxBackups = 3
	}
	if c.Log.MaxAgeDays <= 0 {
		c.Log.MaxAgeDays = 7
	}
	for i := range c.Level.Entities {
		if c.Level.Entities[i].Direction == "" {
			c.Level.Entities[i].Direction = "stop"
		}
	}
	if c.Level.Player == "" && len(c.Level.Entities) > 0 {
		c.Level.Player = c.Level.Entities[0].Name
	}
}

// Validate 只检查配置自身的引用关系；图与豆子的数值约束由 game 构造函数负责
func (c *Config) Validate() error {
	if c.Server.TickRate > 1000 {
		return fmt.Errorf("%w: tick_rate %d too high", ErrInvalidConfig, c.Server.TickRate)
	}
	if c.Rules.SnapThreshold < 0 || c.Rules.PickupThreshold < 0 {
		return fmt.Errorf("%w: thresholds must not be negative", ErrInvalidConfig)
	}
	if len(c.Level.Entities) == 0 {
		return fmt.Errorf("%w: level has no entities", ErrInvalidConfig)
	}
	found := false
	for _, e := range c.Level.Entities {
		if _, ok := c.Level.Graphs[e.Graph]; !ok {
			return fmt.Errorf("%w: entity %q uses unknown graph %q", ErrInvalidConfig, e.Name, e.Graph)
		}
		if e.Name == c.Level.Player {
			found = true
		}
	}
	if !found {
		return fmt.Errorf("%w: player %q is not an entity", ErrInvalidConfig, c.Level.Player)
	}
	return nil
}

// Load 读取 YAML，补默认值并校验
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(b)
}

func Parse(b []byte) (*Config, error) {
	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, err
	}
	c.ApplyDefaults()
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}
