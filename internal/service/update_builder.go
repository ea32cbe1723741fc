package service

import (
	"github.com/keris/scholar-backend/internal/model"
	"go.mongodb.org/mongo-driver/v2/bson"
)

// updateBuilder accumulates the fields of a single partial scholar write.
type updateBuilder struct {
	set    bson.M
	staged bool
}

func newUpdateBuilder() *updateBuilder {
	return &updateBuilder{set: bson.M{}}
}

// text stages a text field. Empty values count as not provided, so a text
// field cannot be blanked through an update.
func (b *updateBuilder) text(field, value string) {
	if value == "" {
		return
	}
	b.set[field] = value
	b.staged = true
}

// list stages a multi-valued field, always stored as a list. A single empty
// value counts as not provided; several values are staged as sent.
func (b *updateBuilder) list(field string, values []string) {
	if len(values) == 0 || (len(values) == 1 && values[0] == "") {
		return
	}
	b.set[field] = append([]string(nil), values...)
	b.staged = true
}

// image stages the image reference; nil clears it.
func (b *updateBuilder) image(url *string) {
	if url == nil {
		b.set[model.FieldImage] = nil
	} else {
		b.set[model.FieldImage] = *url
	}
	b.staged = true
}

func (b *updateBuilder) fields(f model.ScholarFields) {
	b.text(model.FieldName, f.Name)
	b.text(model.FieldEmail, f.Email)
	b.text(model.FieldIGAcc, f.IGAcc)
	b.text(model.FieldAbout, f.About)
	b.text(model.FieldSponsor, f.Sponsor)
	b.list(model.FieldMajor, f.Major)
	b.list(model.FieldInstitution, f.Institution)
}
