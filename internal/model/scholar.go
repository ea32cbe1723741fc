package model

import (
	"io"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Scholar is a scholar record as stored in the scholar collection.
// Major and Institution hold either a single string or a list of strings,
// depending on how the value was last written. Undeclared document fields
// are kept in Extra.
type Scholar struct {
	ID          bson.ObjectID `json:"_id" bson:"_id,omitempty"`
	Name        string        `json:"name" bson:"name"`
	Email       string        `json:"email" bson:"email"`
	IGAcc       string        `json:"ig_acc" bson:"ig_acc"`
	About       string        `json:"about" bson:"about"`
	Sponsor     string        `json:"sponsor" bson:"sponsor"`
	Major       interface{}   `json:"major" bson:"major"`
	Institution interface{}   `json:"institution" bson:"institution"`
	Image       *string       `json:"image" bson:"image"`
	Extra       bson.M        `json:"-" bson:",inline"`
}

func (s Scholar) MarshalJSON() ([]byte, error) {
	type plain Scholar
	return marshalWithExtra(plain(s), s.Extra)
}

func (s *Scholar) UnmarshalJSON(data []byte) error {
	type plain Scholar
	var p plain
	extra, err := unmarshalExtra(data, &p)
	if err != nil {
		return err
	}
	*s = Scholar(p)
	s.Extra = extra
	return nil
}

// Stored field names in the scholar collection.
const (
	FieldName        = "name"
	FieldEmail       = "email"
	FieldIGAcc       = "ig_acc"
	FieldAbout       = "about"
	FieldSponsor     = "sponsor"
	FieldMajor       = "major"
	FieldInstitution = "institution"
	FieldImage       = "image"
)

// ScholarFields carries the text fields of a create or update request.
// Major and Institution keep every submitted value in order.
type ScholarFields struct {
	Name        string
	Email       string
	IGAcc       string
	About       string
	Sponsor     string
	Major       []string
	Institution []string
}

// ImageUpload is an image payload received alongside a scholar request.
type ImageUpload struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// ScalarOrList returns nil for no values, the bare string for one value and
// the slice otherwise.
func ScalarOrList(values []string) interface{} {
	switch len(values) {
	case 0:
		return nil
	case 1:
		return values[0]
	default:
		return values
	}
}

// TextValues flattens a stored major/institution value into its strings.
func TextValues(v interface{}) []string {
	switch t := v.(type) {
	case nil:
		return nil
	case string:
		return []string{t}
	case []string:
		return t
	case bson.A:
		return anyStrings(t)
	case []interface{}:
		return anyStrings(t)
	default:
		return nil
	}
}

func anyStrings(items []interface{}) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
