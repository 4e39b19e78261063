package config_test

import (
	"errors"
	"testing"
	"time"

	"github.com/okian/playmatch/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New()

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
			convey.So(cfg.RoutePrefix, convey.ShouldEqual, "/api/recommendations")
			convey.So(cfg.FamilyKeyColumn, convey.ShouldEqual, "parent_id")
			convey.So(cfg.GeminiModel, convey.ShouldEqual, "gemini-2.0-flash")
			convey.So(cfg.OracleTimeout(), convey.ShouldEqual, 20*time.Second)
			convey.So(cfg.DatabaseURL, convey.ShouldBeEmpty)
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})
	})
}

func TestConfig_Validate(t *testing.T) {
	convey.Convey("Given configs violating invariants", t, func() {
		cases := map[string]func(*config.Config){
			"addr must not be empty":             func(c *config.Config) { c.Addr = " " },
			"route_prefix must start with /":     func(c *config.Config) { c.RoutePrefix = "api" },
			"route_prefix must not end with /":   func(c *config.Config) { c.RoutePrefix = "/api/" },
			"oracle_timeout_ms must be positive": func(c *config.Config) { c.OracleTimeoutMS = 0 },
			"gemini_model must not be empty":     func(c *config.Config) { c.GeminiModel = "" },
		}

		for msg, mutate := range cases {
			cfg := config.New()
			mutate(cfg)
			err := cfg.Validate()

			convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			convey.So(err.Error(), convey.ShouldContainSubstring, msg)
		}
	})
}
