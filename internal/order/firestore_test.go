package order

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/stretchr/testify/require"
)

func TestFirestoreStore(t *testing.T) {
	if os.Getenv("FIRESTORE_EMULATOR_HOST") == "" {
		t.Skip("FIRESTORE_EMULATOR_HOST not set")
	}
	ctx := context.Background()

	client, err := firestore.NewClient(ctx, "site-test")
	require.NoError(t, err)
	defer client.Close()

	collection := fmt.Sprintf("pdf_order_%d", time.Now().UnixNano())
	exerciseStore(t, NewFirestoreStore(client, collection))
}
