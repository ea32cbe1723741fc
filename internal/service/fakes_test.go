package service

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/keris/scholar-backend/internal/model"
	"github.com/keris/scholar-backend/internal/repository"
	"go.mongodb.org/mongo-driver/v2/bson"
)

// memScholarRepo is an in-memory ScholarRepository that counts store access.
type memScholarRepo struct {
	docs    map[bson.ObjectID]*model.Scholar
	order   []bson.ObjectID
	reads   int
	writes  int
	lastSet bson.M
	err     error
}

func newMemScholarRepo() *memScholarRepo {
	return &memScholarRepo{docs: map[bson.ObjectID]*model.Scholar{}}
}

func (r *memScholarRepo) accesses() int { return r.reads + r.writes }

func (r *memScholarRepo) seed(s model.Scholar) bson.ObjectID {
	if s.ID.IsZero() {
		s.ID = bson.NewObjectID()
	}
	doc := s
	r.docs[s.ID] = &doc
	r.order = append(r.order, s.ID)
	return s.ID
}

func (r *memScholarRepo) FindAll(ctx context.Context) ([]model.Scholar, error) {
	r.reads++
	if r.err != nil {
		return nil, r.err
	}
	out := []model.Scholar{}
	for _, id := range r.order {
		if doc, ok := r.docs[id]; ok {
			out = append(out, *doc)
		}
	}
	return out, nil
}

func (r *memScholarRepo) FindByID(ctx context.Context, id bson.ObjectID) (*model.Scholar, error) {
	r.reads++
	if r.err != nil {
		return nil, r.err
	}
	doc, ok := r.docs[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *doc
	return &cp, nil
}

func (r *memScholarRepo) Insert(ctx context.Context, s *model.Scholar) (*model.InsertResult, error) {
	r.writes++
	if r.err != nil {
		return nil, r.err
	}
	s.ID = r.seed(*s)
	return &model.InsertResult{Acknowledged: true, InsertedID: s.ID}, nil
}

func (r *memScholarRepo) UpdateFields(ctx context.Context, id bson.ObjectID, fields bson.M) (*model.UpdateResult, error) {
	r.writes++
	r.lastSet = fields
	if r.err != nil {
		return nil, r.err
	}
	doc, ok := r.docs[id]
	if !ok {
		return &model.UpdateResult{Acknowledged: true}, nil
	}
	for k, v := range fields {
		switch k {
		case model.FieldName:
			doc.Name = v.(string)
		case model.FieldEmail:
			doc.Email = v.(string)
		case model.FieldIGAcc:
			doc.IGAcc = v.(string)
		case model.FieldAbout:
			doc.About = v.(string)
		case model.FieldSponsor:
			doc.Sponsor = v.(string)
		case model.FieldMajor:
			doc.Major = v
		case model.FieldInstitution:
			doc.Institution = v
		case model.FieldImage:
			if v == nil {
				doc.Image = nil
			} else {
				url := v.(string)
				doc.Image = &url
			}
		default:
			return nil, fmt.Errorf("unexpected field %q", k)
		}
	}
	return &model.UpdateResult{Acknowledged: true, MatchedCount: 1, ModifiedCount: 1}, nil
}

func (r *memScholarRepo) Delete(ctx context.Context, id bson.ObjectID) (int64, error) {
	r.writes++
	if r.err != nil {
		return 0, r.err
	}
	if _, ok := r.docs[id]; !ok {
		return 0, nil
	}
	delete(r.docs, id)
	return 1, nil
}

// fakeImageStore records uploads and deletes.
type fakeImageStore struct {
	uploads   []string
	deletes   []string
	bodies    []string
	uploadErr error
	deleteErr error
}

func (f *fakeImageStore) calls() int { return len(f.uploads) + len(f.deletes) }

func (f *fakeImageStore) Upload(ctx context.Context, key string, body io.Reader, size int64, contentType string) (string, error) {
	f.uploads = append(f.uploads, key)
	if f.uploadErr != nil {
		return "", f.uploadErr
	}
	data, _ := io.ReadAll(body)
	f.bodies = append(f.bodies, string(data))
	return "https://scholars.s3.us-east-2.amazonaws.com/" + key, nil
}

func (f *fakeImageStore) Delete(ctx context.Context, key string) error {
	f.deletes = append(f.deletes, key)
	return f.deleteErr
}

// memSponsorRepo is an in-memory SponsorRepository.
type memSponsorRepo struct {
	docs  map[bson.ObjectID]model.Sponsor
	reads int
	err   error
}

func (r *memSponsorRepo) FindAll(ctx context.Context) ([]model.Sponsor, error) {
	r.reads++
	if r.err != nil {
		return nil, r.err
	}
	out := []model.Sponsor{}
	for _, s := range r.docs {
		out = append(out, s)
	}
	return out, nil
}

func (r *memSponsorRepo) FindByID(ctx context.Context, id bson.ObjectID) (*model.Sponsor, error) {
	r.reads++
	if r.err != nil {
		return nil, r.err
	}
	s, ok := r.docs[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &s, nil
}

var errStoreDown = errors.New("store unavailable")
