package logger

import (
	"testing"

	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type LoggerTestSuite struct {
	suite.Suite
}

func TestLoggerSuite(t *testing.T) {
	suite.Run(t, new(LoggerTestSuite))
}

func (suite *LoggerTestSuite) TestNewLogger() {
	logger, err := NewLogger()
	suite.NoError(err)
	suite.NotNil(logger)
	suite.NotNil(logger.Logger)
}

func (suite *LoggerTestSuite) TestNewConsoleLogger() {
	logger, err := NewConsoleLogger(false)
	suite.Require().NoError(err)
	suite.False(logger.Core().Enabled(zapcore.DebugLevel))

	verbose, err := NewConsoleLogger(true)
	suite.Require().NoError(err)
	suite.True(verbose.Core().Enabled(zapcore.DebugLevel))
}

func (suite *LoggerTestSuite) TestNewWithNilLogger() {
	logger := New(nil)
	suite.NotNil(logger.Logger)

	// no-op logger must accept writes
	logger.Info("dropped")
}

func (suite *LoggerTestSuite) TestLoggerSyncNilLogger() {
	logger := &Logger{Logger: nil}

	err := logger.Sync()
	suite.NoError(err)
}

func (suite *LoggerTestSuite) TestWithAddsFields() {
	core, logs := observer.New(zapcore.InfoLevel)
	logger := New(zap.New(core))

	child := logger.With(zap.String("ticker", "AAPL"))
	child.Info("Downloading")

	entries := logs.All()
	suite.Require().Len(entries, 1)
	suite.Equal("Downloading", entries[0].Message)
	suite.Equal("AAPL", entries[0].ContextMap()["ticker"])
}
