package notify_test

import (
	"context"
	"testing"

	"mood-diary/src/notify"

	"github.com/stretchr/testify/assert"
)

func TestFlash(t *testing.T) {
	f := notify.NewFlash()
	assert.NotNil(t, f.Messages())
	assert.Empty(t, f.Messages())

	f.Success("記録を保存しました")
	f.Info("削除する記録はありません")
	f.Error("エラー")

	assert.Equal(t, []notify.Message{
		{Level: notify.LevelSuccess, Text: "記録を保存しました"},
		{Level: notify.LevelInfo, Text: "削除する記録はありません"},
		{Level: notify.LevelError, Text: "エラー"},
	}, f.Messages())
}

func TestFromContext(t *testing.T) {
	t.Run("未設定ならDiscard", func(t *testing.T) {
		n := notify.FromContext(context.Background())
		assert.Equal(t, notify.Discard, n)
		assert.NotPanics(t, func() { n.Success("x") })
	})

	t.Run("設定したNotifierを返す", func(t *testing.T) {
		f := notify.NewFlash()
		ctx := notify.WithNotifier(context.Background(), f)
		notify.FromContext(ctx).Info("hello")
		assert.Len(t, f.Messages(), 1)
	})
}
