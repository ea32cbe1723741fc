package model

import "go.mongodb.org/mongo-driver/v2/bson"

// Sponsor is a read-only sponsor document. Fields without a struct field are
// kept in Extra and emitted alongside the declared ones.
type Sponsor struct {
	ID          bson.ObjectID `json:"_id" bson:"_id,omitempty"`
	Name        string        `json:"name" bson:"name"`
	ShortName   string        `json:"short_name,omitempty" bson:"short_name,omitempty"`
	Description string        `json:"description,omitempty" bson:"description,omitempty"`
	Website     string        `json:"website,omitempty" bson:"website,omitempty"`
	Extra       bson.M        `json:"-" bson:",inline"`
}

func (s Sponsor) MarshalJSON() ([]byte, error) {
	type plain Sponsor
	return marshalWithExtra(plain(s), s.Extra)
}

func (s *Sponsor) UnmarshalJSON(data []byte) error {
	type plain Sponsor
	var p plain
	extra, err := unmarshalExtra(data, &p)
	if err != nil {
		return err
	}
	*s = Sponsor(p)
	s.Extra = extra
	return nil
}

// DefaultSponsors is the sponsor set seeded into new deployments.
func DefaultSponsors() []Sponsor {
	return []Sponsor{
		{Name: "Yayasan Khazanah", ShortName: "YK"},
		{Name: "Permodalan Nasional Berhad", ShortName: "PNB"},
		{Name: "Bank Negara Malaysia", ShortName: "BNM"},
		{Name: "Yayasan Tunku Abdul Rahman", ShortName: "YTAR"},
	}
}
