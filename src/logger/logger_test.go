package logger_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"mood-diary/src/config"
	"mood-diary/src/logger"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitLogger(t *testing.T) {
	t.Run("正常初期化", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "logs")

		err := logger.InitLogger(config.LogConfig{Level: "info", Directory: dir})
		require.NoError(t, err)
		defer logger.CloseLogger()

		assert.NotNil(t, logger.Log)
		assert.Equal(t, logrus.InfoLevel, logger.Log.Level)
		assert.DirExists(t, dir)

		logFile := logger.GetCurrentLogFile()
		assert.NotEmpty(t, logFile)
		assert.FileExists(t, logFile)
	})

	t.Run("ログレベル設定", func(t *testing.T) {
		err := logger.InitLogger(config.LogConfig{Level: "debug", Directory: t.TempDir()})
		require.NoError(t, err)
		defer logger.CloseLogger()

		assert.Equal(t, logrus.DebugLevel, logger.Log.Level)
	})

	t.Run("不正なログレベルはinfo", func(t *testing.T) {
		err := logger.InitLogger(config.LogConfig{Level: "loud", Directory: t.TempDir()})
		require.NoError(t, err)
		defer logger.CloseLogger()

		assert.Equal(t, logrus.InfoLevel, logger.Log.Level)
	})
}

func TestLoggerWritesJSONToFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, logger.InitLogger(config.LogConfig{Level: "info", Directory: dir}))

	logger.WithFields(logrus.Fields{"user_id": 7, "date": "2024-03-05"}).Info("記録を保存しました")
	logFile := logger.GetCurrentLogFile()
	logger.CloseLogger()

	content, err := os.ReadFile(logFile)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(content)), "\n")
	last := lines[len(lines)-2] // 最後の行は「ログファイルを閉じます」
	assert.Contains(t, last, `"user_id":7`)
	assert.Contains(t, last, `"date":"2024-03-05"`)
	assert.Contains(t, last, "記録を保存しました")
}
