package library

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/altconstitution/site/internal/category"
	"github.com/altconstitution/site/internal/logging"
	"github.com/altconstitution/site/internal/order/ordertest"
	"github.com/altconstitution/site/internal/storage/storagetest"
)

func newService(objects *storagetest.Memory, orders *ordertest.Memory, proxy string) *Service {
	return NewService(objects, orders, category.MustNew(category.Defaults...), Options{
		IndexFolder: "Index",
		Proxy:       proxy,
	}, logging.Discard())
}

func TestFiles(t *testing.T) {
	ctx := context.Background()

	t.Run("reconciles stored order with listing", func(t *testing.T) {
		objects := storagetest.NewMemory("Explanation/B.pdf", "Explanation/C.pdf")
		orders := ordertest.NewMemory().Set("Explanation", "A.pdf", "B.pdf")

		files, err := newService(objects, orders, ProxyNone).Files(ctx, "Explanation")
		require.NoError(t, err)
		assert.Equal(t, []string{"B.pdf", "C.pdf"}, files)
	})

	t.Run("no record uses listing order", func(t *testing.T) {
		objects := storagetest.NewMemory("Listen Up/X.pdf", "Listen Up/Y.pdf")

		files, err := newService(objects, ordertest.NewMemory(), ProxyNone).Files(ctx, "Listen Up")
		require.NoError(t, err)
		assert.Equal(t, []string{"X.pdf", "Y.pdf"}, files)
	})

	t.Run("unknown category", func(t *testing.T) {
		_, err := newService(storagetest.NewMemory(), ordertest.NewMemory(), ProxyNone).Files(ctx, "Index")
		assert.True(t, errors.Is(err, category.ErrUnknown))
	})

	t.Run("record read failure is a fetch error", func(t *testing.T) {
		orders := ordertest.NewMemory()
		orders.GetErr = errors.New("db down")

		_, err := newService(storagetest.NewMemory(), orders, ProxyNone).Files(ctx, "Explanation")
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrFetch))
	})

	t.Run("listing failure is a fetch error", func(t *testing.T) {
		objects := storagetest.NewMemory()
		objects.ListErr = errors.New("bucket gone")

		_, err := newService(objects, ordertest.NewMemory(), ProxyNone).Files(ctx, "Explanation")
		assert.True(t, errors.Is(err, ErrFetch))
	})
}

func TestAll(t *testing.T) {
	ctx := context.Background()

	t.Run("every category in configured order", func(t *testing.T) {
		objects := storagetest.NewMemory(
			"Alternative Constitution/2.pdf",
			"Alternative Constitution/1.pdf",
			"Explanation/e.pdf",
		)
		orders := ordertest.NewMemory().Set("Alternative Constitution", "2.pdf", "gone.pdf")

		listings, err := newService(objects, orders, ProxyNone).All(ctx)
		require.NoError(t, err)
		assert.Equal(t, []Listing{
			{Category: "Alternative Constitution", Files: []string{"2.pdf", "1.pdf"}},
			{Category: "Explanation", Files: []string{"e.pdf"}},
			{Category: "Listen Up", Files: []string{}},
		}, listings)
	})

	t.Run("one failing listing fails the batch", func(t *testing.T) {
		objects := storagetest.NewMemory()
		objects.ListErr = errors.New("timeout")

		listings, err := newService(objects, ordertest.NewMemory(), ProxyNone).All(ctx)
		assert.Nil(t, listings)
		assert.True(t, errors.Is(err, ErrFetch))
	})

	t.Run("record failure fails the batch", func(t *testing.T) {
		orders := ordertest.NewMemory()
		orders.AllErr = errors.New("db down")

		_, err := newService(storagetest.NewMemory(), orders, ProxyNone).All(ctx)
		assert.True(t, errors.Is(err, ErrFetch))
	})
}

func TestResolve(t *testing.T) {
	svc := newService(storagetest.NewMemory(), ordertest.NewMemory(), ProxyGoogle)

	doc, err := svc.Resolve("Listen Up", "a b.pdf")
	require.NoError(t, err)
	assert.Equal(t, "https://files.test/Listen Up/a b.pdf", doc.URL)
	assert.Equal(t,
		"https://docs.google.com/gview?url=https%3A%2F%2Ffiles.test%2FListen+Up%2Fa+b.pdf&embedded=true",
		doc.EmbedURL)

	_, err = svc.Resolve("Listen Up", "../secret.pdf")
	assert.True(t, errors.Is(err, ErrInvalidFile))

	_, err = svc.Resolve("Nope", "a.pdf")
	assert.True(t, errors.Is(err, category.ErrUnknown))
}

func TestIndex(t *testing.T) {
	ctx := context.Background()

	t.Run("first file embedded natively", func(t *testing.T) {
		objects := storagetest.NewMemory("Index/b.pdf", "Index/a.pdf")
		doc, ok, err := newService(objects, ordertest.NewMemory(), ProxyGoogle).Index(ctx)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, "a.pdf", doc.Name)
		assert.Equal(t, "https://files.test/Index/a.pdf#toolbar=0", doc.EmbedURL)
	})

	t.Run("empty folder", func(t *testing.T) {
		_, ok, err := newService(storagetest.NewMemory(), ordertest.NewMemory(), ProxyNone).Index(ctx)
		require.NoError(t, err)
		assert.False(t, ok)
	})
}

func TestEmbedURL(t *testing.T) {
	assert.Equal(t, "https://x/a.pdf#toolbar=0", EmbedURL("https://x/a.pdf", ProxyNone))
	assert.Equal(t, "https://x/a.pdf#toolbar=0", EmbedURL("https://x/a.pdf", ""))
	assert.Equal(t,
		"https://docs.google.com/gview?url=https%3A%2F%2Fx%2Fa.pdf&embedded=true",
		EmbedURL("https://x/a.pdf", ProxyGoogle))
}
