package models

import "time"

// Platform values an activity can target.
const (
	PlatformHeadset = "headset"
	PlatformWeb     = "web"
)

// Format values an activity can be authored in.
const (
	FormatAR = "AR"
	FormatVR = "VR"
)

// ValidPlatform reports whether p is one of the supported platforms.
func ValidPlatform(p string) bool {
	return p == PlatformHeadset || p == PlatformWeb
}

// ValidFormat reports whether f is one of the supported formats.
func ValidFormat(f string) bool {
	return f == FormatAR || f == FormatVR
}

// SceneConfig holds the authored contents of a scene.
type SceneConfig struct {
	Objects []map[string]interface{} `bson:"objects" json:"objects"`
}

// Scene is an ordered configuration unit within an activity.
type Scene struct {
	ID     string      `bson:"id" json:"id"`
	Name   string      `bson:"name" json:"name"`
	Order  int         `bson:"order" json:"order"`
	Config SceneConfig `bson:"config" json:"config"`
}

// Activity is an authored AR/VR experience owned by exactly one organization.
// Scenes are embedded on the activity record; the scene with the lowest order
// is the entry scene used by share resolution.
type Activity struct {
	ID          string    `bson:"_id" json:"_id"`
	Title       string    `bson:"title" json:"title"`
	Description string    `bson:"description" json:"description"`
	BannerURL   string    `bson:"bannerUrl" json:"bannerUrl"`
	Platform    string    `bson:"platform" json:"platform"`
	Format      string    `bson:"format" json:"format"`
	OrgID       string    `bson:"orgId" json:"orgId"`
	RagEnabled  bool      `bson:"ragEnabled" json:"ragEnabled"`
	Scenes      []Scene   `bson:"scenes" json:"scenes"`
	CreatedAt   time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time `bson:"updatedAt" json:"updatedAt"`
}
