package models

// AdvertisementType enumerates where an advertisement leads.
type AdvertisementType string

const (
	AdvertisementClasses        AdvertisementType = "classes"
	AdvertisementMembershipPlan AdvertisementType = "membership_plan"
	AdvertisementURL            AdvertisementType = "url"
)

// Valid reports whether t is a known advertisement type.
func (t AdvertisementType) Valid() bool {
	switch t {
	case AdvertisementClasses, AdvertisementMembershipPlan, AdvertisementURL:
		return true
	}
	return false
}

const (
	AdvertisementInactive = 0
	AdvertisementActive   = 1
)

type Advertisement struct {
	BaseModel

	Title        string            `gorm:"size:150;not null;index" json:"title"`
	Description  string            `gorm:"type:text" json:"description"`
	ImageURL     string            `gorm:"size:512" json:"image"`
	Type         AdvertisementType `gorm:"size:32;not null;index" json:"type"`
	RedirectLink string            `gorm:"size:512" json:"redirect_link"`
	Sequence     int               `gorm:"not null;index" json:"sequence"`
	Status       int               `gorm:"not null;index" json:"status"`
}
