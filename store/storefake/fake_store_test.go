package storefake_test

import (
	"context"
	"errors"
	"testing"

	"github.com/gsem/gradebot/store"
	"github.com/gsem/gradebot/store/storefake"
	"github.com/gsem/gradebot/tokens"
	"github.com/stretchr/testify/require"
)

func TestFakeStoreRollsBackFailedUpdate(t *testing.T) {
	fs := storefake.NewFakeStore()
	ctx := context.Background()

	require.NoError(t, fs.Update(ctx, func(tx store.Tx) error {
		return tx.PutToken(&tokens.Token{Token: "kept"})
	}))
	err := fs.Update(ctx, func(tx store.Tx) error {
		require.NoError(t, tx.PutToken(&tokens.Token{Token: "dropped"}))
		return errors.New("fail")
	})
	require.Error(t, err)

	require.NoError(t, fs.View(ctx, func(tx store.Tx) error {
		list := tx.ListTokens()
		require.Len(t, list, 1)
		require.Equal(t, "kept", list[0].Token)
		return nil
	}))
}

func TestFakeStoreFailWith(t *testing.T) {
	fs := storefake.NewFakeStore()
	fs.FailWith = errors.New("disk gone")
	err := fs.View(context.Background(), func(tx store.Tx) error { return nil })
	require.EqualError(t, err, "disk gone")
}
