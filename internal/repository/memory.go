package repository

import (
	"context"
	"fmt"
	"reflect"

	memdb "github.com/hashicorp/go-memdb"
	"github.com/keris/scholar-backend/internal/model"
	"go.mongodb.org/mongo-driver/v2/bson"
)

const (
	scholarTable = "scholar"
	sponsorTable = "sponsor"
)

var memorySchema = &memdb.DBSchema{
	Tables: map[string]*memdb.TableSchema{
		scholarTable: {
			Name: scholarTable,
			Indexes: map[string]*memdb.IndexSchema{
				"id": {Name: "id", Unique: true, Indexer: &memdb.StringFieldIndex{Field: "Key"}},
			},
		},
		sponsorTable: {
			Name: sponsorTable,
			Indexes: map[string]*memdb.IndexSchema{
				"id": {Name: "id", Unique: true, Indexer: &memdb.StringFieldIndex{Field: "Key"}},
			},
		},
	},
}

// scholarRow and sponsorRow wrap documents with the hex id string memdb indexes.
// Rows are immutable once inserted; updates insert a fresh copy.
type scholarRow struct {
	Key string
	Doc model.Scholar
}

type sponsorRow struct {
	Key string
	Doc model.Sponsor
}

// MemoryStore is an in-process document store for local development and
// tests. It implements both ScholarRepository and SponsorRepository.
type MemoryStore struct {
	db *memdb.MemDB
}

// NewMemoryStore creates an empty store seeded with sponsors.
func NewMemoryStore(sponsors []model.Sponsor) (*MemoryStore, error) {
	db, err := memdb.NewMemDB(memorySchema)
	if err != nil {
		return nil, fmt.Errorf("create memdb: %w", err)
	}

	txn := db.Txn(true)
	defer txn.Abort()
	for _, s := range sponsors {
		if s.ID.IsZero() {
			s.ID = bson.NewObjectID()
		}
		if err := txn.Insert(sponsorTable, &sponsorRow{Key: s.ID.Hex(), Doc: s}); err != nil {
			return nil, fmt.Errorf("seed sponsor: %w", err)
		}
	}
	txn.Commit()

	return &MemoryStore{db: db}, nil
}

// Scholars returns the store as a ScholarRepository.
func (m *MemoryStore) Scholars() ScholarRepository { return memoryScholars{m} }

// Sponsors returns the store as a SponsorRepository.
func (m *MemoryStore) Sponsors() SponsorRepository { return memorySponsors{m} }

type memoryScholars struct{ m *MemoryStore }

func (r memoryScholars) FindAll(ctx context.Context) ([]model.Scholar, error) {
	txn := r.m.db.Txn(false)
	it, err := txn.Get(scholarTable, "id")
	if err != nil {
		return nil, err
	}

	scholars := []model.Scholar{}
	for obj := it.Next(); obj != nil; obj = it.Next() {
		scholars = append(scholars, obj.(*scholarRow).Doc)
	}
	return scholars, nil
}

func (r memoryScholars) FindByID(ctx context.Context, id bson.ObjectID) (*model.Scholar, error) {
	row, err := r.m.scholar(r.m.db.Txn(false), id)
	if err != nil {
		return nil, err
	}
	doc := row.Doc
	return &doc, nil
}

func (r memoryScholars) Insert(ctx context.Context, scholar *model.Scholar) (*model.InsertResult, error) {
	doc := *scholar
	if doc.ID.IsZero() {
		doc.ID = bson.NewObjectID()
	}
	// Round-trip through BSON so stored values look the same as Mongo's.
	stored, err := normalize(doc)
	if err != nil {
		return nil, err
	}

	txn := r.m.db.Txn(true)
	defer txn.Abort()
	if err := txn.Insert(scholarTable, &scholarRow{Key: doc.ID.Hex(), Doc: stored}); err != nil {
		return nil, fmt.Errorf("insert scholar: %w", err)
	}
	txn.Commit()

	scholar.ID = doc.ID
	return &model.InsertResult{Acknowledged: true, InsertedID: doc.ID}, nil
}

func (r memoryScholars) UpdateFields(ctx context.Context, id bson.ObjectID, fields bson.M) (*model.UpdateResult, error) {
	txn := r.m.db.Txn(true)
	defer txn.Abort()

	row, err := r.m.scholar(txn, id)
	if err == ErrNotFound {
		return &model.UpdateResult{Acknowledged: true}, nil
	}
	if err != nil {
		return nil, err
	}

	before, err := bson.Marshal(row.Doc)
	if err != nil {
		return nil, err
	}
	var merged bson.M
	if err := bson.Unmarshal(before, &merged); err != nil {
		return nil, err
	}
	for k, v := range fields {
		merged[k] = v
	}
	raw, err := bson.Marshal(merged)
	if err != nil {
		return nil, err
	}
	var doc model.Scholar
	if err := bson.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	after, err := bson.Marshal(doc)
	if err != nil {
		return nil, err
	}
	modified, err := documentsDiffer(before, after)
	if err != nil {
		return nil, err
	}
	if err := txn.Insert(scholarTable, &scholarRow{Key: row.Key, Doc: doc}); err != nil {
		return nil, fmt.Errorf("update scholar: %w", err)
	}
	txn.Commit()

	res := &model.UpdateResult{Acknowledged: true, MatchedCount: 1}
	if modified {
		res.ModifiedCount = 1
	}
	return res, nil
}

func (r memoryScholars) Delete(ctx context.Context, id bson.ObjectID) (int64, error) {
	txn := r.m.db.Txn(true)
	defer txn.Abort()

	row, err := r.m.scholar(txn, id)
	if err == ErrNotFound {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	if err := txn.Delete(scholarTable, row); err != nil {
		return 0, err
	}
	txn.Commit()
	return 1, nil
}

type memorySponsors struct{ m *MemoryStore }

func (r memorySponsors) FindAll(ctx context.Context) ([]model.Sponsor, error) {
	it, err := r.m.db.Txn(false).Get(sponsorTable, "id")
	if err != nil {
		return nil, err
	}

	sponsors := []model.Sponsor{}
	for obj := it.Next(); obj != nil; obj = it.Next() {
		sponsors = append(sponsors, obj.(*sponsorRow).Doc)
	}
	return sponsors, nil
}

func (r memorySponsors) FindByID(ctx context.Context, id bson.ObjectID) (*model.Sponsor, error) {
	obj, err := r.m.db.Txn(false).First(sponsorTable, "id", id.Hex())
	if err != nil {
		return nil, err
	}
	if obj == nil {
		return nil, ErrNotFound
	}
	doc := obj.(*sponsorRow).Doc
	return &doc, nil
}

func (m *MemoryStore) scholar(txn *memdb.Txn, id bson.ObjectID) (*scholarRow, error) {
	obj, err := txn.First(scholarTable, "id", id.Hex())
	if err != nil {
		return nil, err
	}
	if obj == nil {
		return nil, ErrNotFound
	}
	return obj.(*scholarRow), nil
}

// documentsDiffer compares two encoded documents by content; inline extra
// fields make the byte order unstable.
func documentsDiffer(a, b []byte) (bool, error) {
	var am, bm bson.M
	if err := bson.Unmarshal(a, &am); err != nil {
		return false, err
	}
	if err := bson.Unmarshal(b, &bm); err != nil {
		return false, err
	}
	return !reflect.DeepEqual(am, bm), nil
}

func normalize(doc model.Scholar) (model.Scholar, error) {
	raw, err := bson.Marshal(doc)
	if err != nil {
		return model.Scholar{}, err
	}
	var out model.Scholar
	if err := bson.Unmarshal(raw, &out); err != nil {
		return model.Scholar{}, err
	}
	return out, nil
}
