package order

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// DefaultCollection is the Firestore collection holding one document per category.
const DefaultCollection = "pdf_order"

type firestoreRecord struct {
	Category  string   `firestore:"category"`
	FileOrder []string `firestore:"fileOrder"`
}

// FirestoreStore keeps order records in a Firestore collection keyed by category.
type FirestoreStore struct {
	client     *firestore.Client
	collection string
}

// NewFirestoreStore creates a FirestoreStore on the given collection.
func NewFirestoreStore(client *firestore.Client, collection string) *FirestoreStore {
	if collection == "" {
		collection = DefaultCollection
	}
	return &FirestoreStore{client: client, collection: collection}
}

// Get fetches the order for one category.
func (s *FirestoreStore) Get(ctx context.Context, category string) ([]string, bool, error) {
	snap, err := s.client.Collection(s.collection).Doc(category).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("%w: get %q: %w", ErrStore, category, err)
	}
	var rec firestoreRecord
	if err := snap.DataTo(&rec); err != nil {
		return nil, false, fmt.Errorf("%w: decode %q: %w", ErrStore, category, err)
	}
	return clone(rec.FileOrder), true, nil
}

// All fetches every order record sorted by category.
func (s *FirestoreStore) All(ctx context.Context) ([]Record, error) {
	iter := s.client.Collection(s.collection).OrderBy("category", firestore.Asc).Documents(ctx)
	defer iter.Stop()

	var records []Record
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: list orders: %w", ErrStore, err)
		}
		var rec firestoreRecord
		if err := snap.DataTo(&rec); err != nil {
			return nil, fmt.Errorf("%w: decode %q: %w", ErrStore, snap.Ref.ID, err)
		}
		records = append(records, Record{Category: rec.Category, FileOrder: clone(rec.FileOrder)})
	}
	return records, nil
}

// Update overwrites the order for a category.
func (s *FirestoreStore) Update(ctx context.Context, category string, fileOrder []string) error {
	_, err := s.client.Collection(s.collection).Doc(category).Set(ctx, firestoreRecord{
		Category:  category,
		FileOrder: clone(fileOrder),
	})
	if err != nil {
		return fmt.Errorf("%w: set %q: %w", ErrStore, category, err)
	}
	return nil
}
