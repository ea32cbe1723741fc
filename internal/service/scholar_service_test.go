package service

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/keris/scholar-backend/internal/model"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/v2/bson"
)

const priorImage = "https://scholars.s3.us-east-2.amazonaws.com/uploads/1600000000000_old.png"

func newScholarServiceForTest(t *testing.T) (*ScholarService, *memScholarRepo, *fakeImageStore) {
	t.Helper()
	repo := newMemScholarRepo()
	images := &fakeImageStore{}
	svc := NewScholarService(repo, images, zerolog.Nop())
	svc.now = func() time.Time { return time.UnixMilli(1700000000000) }
	return svc, repo, images
}

func strPtr(s string) *string { return &s }

func pngUpload(name string) *model.ImageUpload {
	return &model.ImageUpload{Filename: name, ContentType: "image/png", Size: 3, Body: strings.NewReader("png")}
}

func fullScholar() model.Scholar {
	return model.Scholar{
		Name:        "A",
		Email:       "a@x.com",
		IGAcc:       "@a",
		About:       "bio",
		Sponsor:     "Yayasan TAR",
		Major:       "CS",
		Institution: "X",
		Image:       strPtr(priorImage),
	}
}

func TestMalformedIDFailsBeforeStoreAccess(t *testing.T) {
	svc, repo, images := newScholarServiceForTest(t)
	ctx := context.Background()

	for _, id := range []string{"", "abc", "zzzzzzzzzzzzzzzzzzzzzzzz", "65a0c0ffee65a0c0ffee65a0c0"} {
		if _, err := svc.GetByID(ctx, id); !errors.Is(err, ErrInvalidID) {
			t.Fatalf("GetByID(%q): expected ErrInvalidID, got %v", id, err)
		}
		if _, err := svc.Update(ctx, id, model.ScholarFields{Name: "B"}, pngUpload("a.png"), ""); !errors.Is(err, ErrInvalidID) {
			t.Fatalf("Update(%q): expected ErrInvalidID, got %v", id, err)
		}
		if err := svc.Delete(ctx, id); !errors.Is(err, ErrInvalidID) {
			t.Fatalf("Delete(%q): expected ErrInvalidID, got %v", id, err)
		}
	}

	if repo.accesses() != 0 {
		t.Fatalf("expected zero store access, got %d", repo.accesses())
	}
	if images.calls() != 0 {
		t.Fatalf("expected zero blob calls, got %d", images.calls())
	}
}

func TestMissingDocumentReturnsNotFound(t *testing.T) {
	svc, repo, images := newScholarServiceForTest(t)
	ctx := context.Background()
	id := bson.NewObjectID().Hex()

	if _, err := svc.GetByID(ctx, id); !errors.Is(err, ErrNotFound) {
		t.Fatalf("GetByID: expected ErrNotFound, got %v", err)
	}
	if _, err := svc.Update(ctx, id, model.ScholarFields{Name: "B"}, pngUpload("a.png"), ""); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Update: expected ErrNotFound, got %v", err)
	}
	if err := svc.Delete(ctx, id); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Delete: expected ErrNotFound, got %v", err)
	}

	if repo.writes != 1 {
		t.Fatalf("expected only the delete attempt to write, got %d writes", repo.writes)
	}
	if images.calls() != 0 {
		t.Fatalf("expected no upload for a missing record, got %d blob calls", images.calls())
	}
}

func TestUpdateWithNothingReturnsNoUpdates(t *testing.T) {
	svc, repo, images := newScholarServiceForTest(t)
	id := repo.seed(fullScholar())

	_, err := svc.Update(context.Background(), id.Hex(), model.ScholarFields{}, nil, "")
	if !errors.Is(err, ErrNoUpdates) {
		t.Fatalf("expected ErrNoUpdates, got %v", err)
	}
	if repo.writes != 0 {
		t.Fatalf("expected zero writes, got %d", repo.writes)
	}
	if images.calls() != 0 {
		t.Fatalf("expected zero blob calls, got %d", images.calls())
	}
}

// Empty strings are treated as absent, so they cannot blank a field.
func TestUpdateIgnoresEmptyStrings(t *testing.T) {
	svc, repo, _ := newScholarServiceForTest(t)
	id := repo.seed(fullScholar())

	_, err := svc.Update(context.Background(), id.Hex(), model.ScholarFields{
		Name:        "",
		Email:       "",
		Major:       []string{""},
		Institution: nil,
	}, nil, "keep")
	if !errors.Is(err, ErrNoUpdates) {
		t.Fatalf("expected ErrNoUpdates for empty values, got %v", err)
	}
	if repo.docs[id].Name != "A" {
		t.Fatalf("expected name untouched, got %q", repo.docs[id].Name)
	}
}

func TestUpdateNameOnlyLeavesEverythingElse(t *testing.T) {
	svc, repo, images := newScholarServiceForTest(t)
	id := repo.seed(fullScholar())
	before := *repo.docs[id]

	res, err := svc.Update(context.Background(), id.Hex(), model.ScholarFields{Name: "B"}, nil, "")
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if res.MatchedCount != 1 || !res.Acknowledged {
		t.Fatalf("unexpected ack %+v", res)
	}
	if !reflect.DeepEqual(repo.lastSet, bson.M{"name": "B"}) {
		t.Fatalf("expected only name staged, got %v", repo.lastSet)
	}

	after := *repo.docs[id]
	if after.Name != "B" {
		t.Fatalf("expected name B, got %q", after.Name)
	}
	after.Name = before.Name
	if !reflect.DeepEqual(before, after) {
		t.Fatalf("expected other fields untouched\nbefore=%+v\nafter=%+v", before, after)
	}
	if images.calls() != 0 {
		t.Fatalf("expected zero blob calls, got %d", images.calls())
	}
}

func TestUpdateWrapsMajorAndInstitutionIntoLists(t *testing.T) {
	svc, repo, _ := newScholarServiceForTest(t)
	id := repo.seed(fullScholar())

	_, err := svc.Update(context.Background(), id.Hex(), model.ScholarFields{
		Major:       []string{"EE"},
		Institution: []string{"X", "Y"},
	}, nil, "")
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if !reflect.DeepEqual(repo.lastSet["major"], []string{"EE"}) {
		t.Fatalf("expected one-element major list, got %#v", repo.lastSet["major"])
	}
	if !reflect.DeepEqual(repo.lastSet["institution"], []string{"X", "Y"}) {
		t.Fatalf("expected institution list, got %#v", repo.lastSet["institution"])
	}
}

func TestUpdateReplacesImage(t *testing.T) {
	svc, repo, images := newScholarServiceForTest(t)
	id := repo.seed(fullScholar())

	_, err := svc.Update(context.Background(), id.Hex(), model.ScholarFields{}, pngUpload("new face.png"), ImageActionRemove)
	if err != nil {
		t.Fatalf("update: %v", err)
	}

	if len(images.uploads) != 1 || images.uploads[0] != "uploads/1700000000000_new face.png" {
		t.Fatalf("expected one upload under a fresh key, got %v", images.uploads)
	}
	if len(images.deletes) != 1 || images.deletes[0] != "uploads/1600000000000_old.png" {
		t.Fatalf("expected one delete of the prior key, got %v", images.deletes)
	}
	want := "https://scholars.s3.us-east-2.amazonaws.com/uploads/1700000000000_new face.png"
	if got := repo.docs[id].Image; got == nil || *got != want {
		t.Fatalf("expected image %q, got %v", want, got)
	}
}

func TestUpdateImageWithoutPriorSkipsDelete(t *testing.T) {
	svc, repo, images := newScholarServiceForTest(t)
	s := fullScholar()
	s.Image = nil
	id := repo.seed(s)

	if _, err := svc.Update(context.Background(), id.Hex(), model.ScholarFields{}, pngUpload("a.png"), ""); err != nil {
		t.Fatalf("update: %v", err)
	}
	if len(images.uploads) != 1 || len(images.deletes) != 0 {
		t.Fatalf("expected 1 upload and 0 deletes, got %d/%d", len(images.uploads), len(images.deletes))
	}
}

func TestUpdateRemoveImage(t *testing.T) {
	t.Run("with prior image", func(t *testing.T) {
		svc, repo, images := newScholarServiceForTest(t)
		id := repo.seed(fullScholar())

		if _, err := svc.Update(context.Background(), id.Hex(), model.ScholarFields{}, nil, ImageActionRemove); err != nil {
			t.Fatalf("update: %v", err)
		}
		if repo.docs[id].Image != nil {
			t.Fatalf("expected image cleared, got %q", *repo.docs[id].Image)
		}
		if len(images.deletes) != 1 || len(images.uploads) != 0 {
			t.Fatalf("expected exactly one delete, got uploads=%v deletes=%v", images.uploads, images.deletes)
		}
	})

	t.Run("without prior image", func(t *testing.T) {
		svc, repo, images := newScholarServiceForTest(t)
		s := fullScholar()
		s.Image = nil
		id := repo.seed(s)

		if _, err := svc.Update(context.Background(), id.Hex(), model.ScholarFields{}, nil, ImageActionRemove); err != nil {
			t.Fatalf("update: %v", err)
		}
		if repo.docs[id].Image != nil {
			t.Fatal("expected image to stay null")
		}
		if images.calls() != 0 {
			t.Fatalf("expected zero blob calls, got %d", images.calls())
		}
		if _, ok := repo.lastSet["image"]; !ok {
			t.Fatal("expected image staged as null")
		}
	})
}

func TestUpdateSwallowsPriorImageDeleteFailure(t *testing.T) {
	svc, repo, images := newScholarServiceForTest(t)
	images.deleteErr = errors.New("access denied")
	id := repo.seed(fullScholar())

	res, err := svc.Update(context.Background(), id.Hex(), model.ScholarFields{}, nil, ImageActionRemove)
	if err != nil {
		t.Fatalf("expected best-effort delete failure to be swallowed, got %v", err)
	}
	if res.ModifiedCount != 1 || repo.docs[id].Image != nil {
		t.Fatalf("expected update applied, got ack=%+v image=%v", res, repo.docs[id].Image)
	}
}

func TestUpdateUploadFailureAbortsWithoutWrite(t *testing.T) {
	svc, repo, images := newScholarServiceForTest(t)
	images.uploadErr = errors.New("bucket missing")
	id := repo.seed(fullScholar())

	_, err := svc.Update(context.Background(), id.Hex(), model.ScholarFields{Name: "B"}, pngUpload("a.png"), "")
	if err == nil || errors.Is(err, ErrNoUpdates) {
		t.Fatalf("expected upload error, got %v", err)
	}
	if repo.writes != 0 || len(images.deletes) != 0 {
		t.Fatalf("expected no write and no delete, got writes=%d deletes=%d", repo.writes, len(images.deletes))
	}
}

func TestCreateWithoutImage(t *testing.T) {
	svc, repo, images := newScholarServiceForTest(t)

	res, err := svc.Create(context.Background(), model.ScholarFields{Name: "A", Major: []string{"CS"}}, nil)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if res.InsertedID.IsZero() || !res.Acknowledged {
		t.Fatalf("expected generated id, got %+v", res)
	}

	doc := repo.docs[res.InsertedID]
	if doc.Image != nil {
		t.Fatalf("expected null image, got %q", *doc.Image)
	}
	if doc.Major != "CS" {
		t.Fatalf("expected scalar major, got %#v", doc.Major)
	}
	if doc.Institution != nil {
		t.Fatalf("expected absent institution, got %#v", doc.Institution)
	}
	if images.calls() != 0 {
		t.Fatalf("expected zero blob calls, got %d", images.calls())
	}
}

func TestCreateWithImage(t *testing.T) {
	svc, repo, images := newScholarServiceForTest(t)

	res, err := svc.Create(context.Background(), model.ScholarFields{Major: []string{"CS", "EE"}}, pngUpload("dir/me.png"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	doc := repo.docs[res.InsertedID]
	want := "https://scholars.s3.us-east-2.amazonaws.com/uploads/1700000000000_me.png"
	if doc.Image == nil || *doc.Image != want {
		t.Fatalf("expected image %q, got %v", want, doc.Image)
	}
	if !reflect.DeepEqual(doc.Major, []string{"CS", "EE"}) {
		t.Fatalf("expected list major, got %#v", doc.Major)
	}
	if len(images.bodies) != 1 || images.bodies[0] != "png" {
		t.Fatalf("expected image bytes uploaded, got %v", images.bodies)
	}
}

func TestCreateInsertFailureLeavesUploadedImage(t *testing.T) {
	svc, repo, images := newScholarServiceForTest(t)
	repo.err = errStoreDown

	if _, err := svc.Create(context.Background(), model.ScholarFields{Name: "A"}, pngUpload("a.png")); !errors.Is(err, errStoreDown) {
		t.Fatalf("expected store error, got %v", err)
	}
	if len(images.uploads) != 1 || len(images.deletes) != 0 {
		t.Fatalf("expected orphaned upload with no compensation, got uploads=%v deletes=%v", images.uploads, images.deletes)
	}
}

func TestDeleteLeavesImageInBlobStore(t *testing.T) {
	svc, repo, images := newScholarServiceForTest(t)
	id := repo.seed(fullScholar())

	if err := svc.Delete(context.Background(), id.Hex()); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, ok := repo.docs[id]; ok {
		t.Fatal("expected document removed")
	}
	if images.calls() != 0 {
		t.Fatalf("expected zero blob calls on delete, got %d", images.calls())
	}
}

func TestGetAllPropagatesStoreError(t *testing.T) {
	svc, repo, _ := newScholarServiceForTest(t)
	repo.err = errStoreDown
	if _, err := svc.GetAll(context.Background()); !errors.Is(err, errStoreDown) {
		t.Fatalf("expected store error, got %v", err)
	}
}

func TestScholarLifecycle(t *testing.T) {
	svc, _, _ := newScholarServiceForTest(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, model.ScholarFields{
		Name:        "A",
		Email:       "a@x.com",
		Sponsor:     "Yayasan TAR",
		Major:       []string{"CS"},
		Institution: []string{"X"},
	}, nil)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	id := created.InsertedID.Hex()

	got, err := svc.GetByID(ctx, id)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Image != nil {
		t.Fatalf("expected null image, got %q", *got.Image)
	}

	if _, err := svc.Update(ctx, id, model.ScholarFields{Major: []string{"EE"}}, nil, ""); err != nil {
		t.Fatalf("update: %v", err)
	}
	got, err = svc.GetByID(ctx, id)
	if err != nil {
		t.Fatalf("get after update: %v", err)
	}
	if !reflect.DeepEqual(model.TextValues(got.Major), []string{"EE"}) || got.Name != "A" {
		t.Fatalf("unexpected record after update: %+v", got)
	}

	if err := svc.Delete(ctx, id); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := svc.GetByID(ctx, id); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}
