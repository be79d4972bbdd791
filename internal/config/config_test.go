package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pkg/errors"

	"github.com/Versifine/strafe/internal/locomotion"
)

// TestLoad 使用表驱动测试覆盖配置加载的核心场景
func TestLoad(t *testing.T) {
	tests := []struct {
		name       string
		createFile bool
		content    string
		wantErr    bool
		validate   func(t *testing.T, cfg *Config, err error)
	}{
		{
			name:       "正常加载有效YAML",
			createFile: true,
			content: `logging:
  level: "debug"
  format: "json"
  file: "strafe.log"
simulation:
  tick_rate: 50
  arena_size: 16
  spawn: [1.5, 0, 2.5]
locomotion:
  base_speed: 12
  air_speed_cap: 3
  gravity: 20
stream:
  enabled: true
  listen: "0.0.0.0:9000"
`,
			wantErr: false,
			validate: func(t *testing.T, cfg *Config, err error) {
				if cfg.Logging.Level != "debug" {
					t.Errorf("Logging.Level = %q, 期望 %q", cfg.Logging.Level, "debug")
				}
				if cfg.Logging.Format != "json" {
					t.Errorf("Logging.Format = %q, 期望 %q", cfg.Logging.Format, "json")
				}
				if cfg.Logging.File != "strafe.log" {
					t.Errorf("Logging.File = %q, 期望 %q", cfg.Logging.File, "strafe.log")
				}
				if cfg.Simulation.TickRate != 50 {
					t.Errorf("Simulation.TickRate = %d, 期望 %d", cfg.Simulation.TickRate, 50)
				}
				if cfg.Simulation.ArenaSize != 16 {
					t.Errorf("Simulation.ArenaSize = %d, 期望 %d", cfg.Simulation.ArenaSize, 16)
				}
				if cfg.Simulation.Spawn != [3]float64{1.5, 0, 2.5} {
					t.Errorf("Simulation.Spawn = %v, 期望 %v", cfg.Simulation.Spawn, [3]float64{1.5, 0, 2.5})
				}
				if cfg.Locomotion.BaseSpeed != 12 {
					t.Errorf("Locomotion.BaseSpeed = %v, 期望 %v", cfg.Locomotion.BaseSpeed, 12)
				}
				if cfg.Locomotion.AirSpeedCap != 3 {
					t.Errorf("Locomotion.AirSpeedCap = %v, 期望 %v", cfg.Locomotion.AirSpeedCap, 3)
				}
				if cfg.Locomotion.Gravity != 20 {
					t.Errorf("Locomotion.Gravity = %v, 期望 %v", cfg.Locomotion.Gravity, 20)
				}
				// 未指定的字段保留默认值
				if cfg.Locomotion.JumpImpulse != 8 {
					t.Errorf("Locomotion.JumpImpulse = %v, 期望默认值 %v", cfg.Locomotion.JumpImpulse, 8)
				}
				if cfg.Locomotion.GroundFriction != 7 {
					t.Errorf("Locomotion.GroundFriction = %v, 期望默认值 %v", cfg.Locomotion.GroundFriction, 7)
				}
				if !cfg.Stream.Enabled || cfg.Stream.Listen != "0.0.0.0:9000" {
					t.Errorf("Stream = %+v, 期望启用并监听 0.0.0.0:9000", cfg.Stream)
				}
			},
		},
		{
			name:       "文件不存在",
			createFile: false,
			wantErr:    true,
			validate: func(t *testing.T, cfg *Config, err error) {
				if !os.IsNotExist(errors.Cause(err)) {
					t.Errorf("期望文件不存在错误，实际: %v", err)
				}
			},
		},
		{
			name:       "YAML格式错误",
			createFile: true,
			content: `simulation:
  tick_rate: [60
locomotion:
  base_speed: 10
`,
			wantErr: true,
			validate: func(t *testing.T, cfg *Config, err error) {
				if err == nil || !strings.Contains(err.Error(), "yaml") {
					t.Errorf("期望返回YAML解析错误，实际: %v", err)
				}
			},
		},
		{
			name:       "负数参数被拒绝",
			createFile: true,
			content: `locomotion:
  ground_friction: -1
`,
			wantErr: true,
			validate: func(t *testing.T, cfg *Config, err error) {
				if err == nil || !strings.Contains(err.Error(), "locomotion.ground_friction") {
					t.Errorf("期望返回参数校验错误，实际: %v", err)
				}
			},
		},
		{
			name:       "空文件",
			createFile: true,
			content:    "",
			wantErr:    false,
			validate: func(t *testing.T, cfg *Config, err error) {
				// 空文件得到默认配置
				want := Default()
				if cfg.Locomotion != want.Locomotion {
					t.Errorf("Locomotion = %+v, 期望默认值 %+v", cfg.Locomotion, want.Locomotion)
				}
				if cfg.Simulation.TickRate != want.Simulation.TickRate {
					t.Errorf("TickRate = %d, 期望默认值 %d", cfg.Simulation.TickRate, want.Simulation.TickRate)
				}
				if cfg.Logging.Level != "info" || cfg.Logging.File != "" {
					t.Errorf("Logging = %+v, 期望默认值", cfg.Logging)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tempDir := t.TempDir()
			configPath := filepath.Join(tempDir, "config.yaml")

			if tt.createFile {
				if err := os.WriteFile(configPath, []byte(tt.content), 0o644); err != nil {
					t.Fatalf("创建测试配置文件失败: %v", err)
				}
			}

			cfg, err := Load(configPath)

			if (err != nil) != tt.wantErr {
				t.Fatalf("Load() error = %v, wantErr %v", err, tt.wantErr)
			}

			if err == nil && cfg == nil {
				t.Fatalf("Load() 返回了 nil 配置")
			}

			if tt.validate != nil {
				tt.validate(t, cfg, err)
			}
		})
	}
}

// TestValidate 测试配置校验规则
func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"默认配置合法", func(c *Config) {}, ""},
		{"tick_rate 为零", func(c *Config) { c.Simulation.TickRate = 0 }, "simulation.tick_rate"},
		{"arena_size 为负", func(c *Config) { c.Simulation.ArenaSize = -4 }, "simulation.arena_size"},
		{"启用 stream 但未设置地址", func(c *Config) {
			c.Stream.Enabled = true
			c.Stream.Listen = ""
		}, "stream.listen"},
		{"负重力", func(c *Config) { c.Locomotion.Gravity = -18 }, "locomotion.gravity"},
		{"零参数允许", func(c *Config) { c.Locomotion = locomotion.Params{} }, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate() 返回错误: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("Validate() error = %v, 期望包含 %q", err, tt.wantErr)
			}
		})
	}
}

func TestTickInterval(t *testing.T) {
	s := SimulationConfig{TickRate: 50}
	if got := s.TickInterval(); got != 0.02 {
		t.Fatalf("TickInterval() = %v, 期望 0.02", got)
	}
}
