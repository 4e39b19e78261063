package service_test

import (
	"io"
	"testing"

	"go.uber.org/goleak"

	"github.com/okian/playmatch/pkg/logger"
)

func TestMain(m *testing.M) {
	if err := logger.Init(logger.WithWriter(io.Discard)); err != nil {
		panic(err)
	}
	goleak.VerifyTestMain(m)
}
