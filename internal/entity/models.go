package entity

import "time"

// Sender identifies who authored a chat message
type Sender string

const (
	SenderUser Sender = "user"
	SenderBot  Sender = "bot"
)

// MessageKind tells the presentation layer how to render a message
type MessageKind string

const (
	KindText            MessageKind = "text"
	KindOptions         MessageKind = "options"
	KindImageCollection MessageKind = "image-collection"
	KindStyleInputs     MessageKind = "style-inputs"
	KindResult          MessageKind = "result"
)

// Option is a selectable choice rendered with an options message
type Option struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

// MessagePayload carries the kind-specific structured data of a message.
// Only the fields matching the message kind are populated.
type MessagePayload struct {
	Options    []Option           `json:"options,omitempty"`
	ImageSlots []ImageSlotInfo    `json:"image_slots,omitempty"`
	Style      *StyleInputsConfig `json:"style,omitempty"`
	ResultURL  string             `json:"result_url,omitempty"`
}

// ImageSlotInfo describes one upload slot for the image-collection widget
type ImageSlotInfo struct {
	Name                string `json:"name"`
	Label               string `json:"label"`
	MaxCount            int    `json:"max_count"`
	RequiresDescription bool   `json:"requires_description"`
}

// StyleInputsConfig lists the selectable colors and categories for the
// style-inputs widget
type StyleInputsConfig struct {
	Colors     []string `json:"colors"`
	Gradients  []string `json:"gradients"`
	Categories []Option `json:"categories"`
}

// Message is a single conversation turn. Messages are immutable once
// appended to a timeline.
type Message struct {
	ID        string          `json:"id"`
	Sender    Sender          `json:"sender"`
	Content   string          `json:"content"`
	Kind      MessageKind     `json:"kind"`
	Payload   *MessagePayload `json:"payload,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

// ImageItem is one uploaded image with its user-provided description.
// An item with no data is not considered present.
type ImageItem struct {
	Data        []byte `json:"-"`
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
	Description string `json:"description"`
}

// Present reports whether the item actually carries a file
func (i ImageItem) Present() bool {
	return len(i.Data) > 0
}

// FieldSet accumulates the structured request payload over the course of
// one conversation
type FieldSet struct {
	BgImg            *ImageItem  `json:"bg_img,omitempty"`
	MajorImg         *ImageItem  `json:"major_img,omitempty"`
	ImgIcons         []ImageItem `json:"img_icons,omitempty"`
	ThemeColor       string      `json:"theme_color"`
	Category         string      `json:"category"`
	FinalDescription string      `json:"final_description"`
}

// HasImages reports whether any image slot holds a file
func (f *FieldSet) HasImages() bool {
	if f.BgImg != nil && f.BgImg.Present() {
		return true
	}
	if f.MajorImg != nil && f.MajorImg.Present() {
		return true
	}
	for _, icon := range f.ImgIcons {
		if icon.Present() {
			return true
		}
	}
	return false
}

// GenerationResult is the normalized outcome of a generate or follow-up
// call. Transient: it only drives the next state transition.
type GenerationResult struct {
	Success bool   `json:"success"`
	URL     string `json:"url,omitempty"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Categories is the fixed set of thumbnail categories
var Categories = []Option{
	{ID: "lifestyle", Label: "Lifestyle"},
	{ID: "technology", Label: "Technology"},
	{ID: "entertainment", Label: "Entertainment"},
	{ID: "gaming", Label: "Gaming"},
	{ID: "education", Label: "Education"},
	{ID: "news", Label: "News"},
}

// ValidCategory reports whether id is one of the enumerated categories
func ValidCategory(id string) bool {
	for _, c := range Categories {
		if c.ID == id {
			return true
		}
	}
	return false
}

// PresetColors are the flat theme color tokens offered by the picker
var PresetColors = []string{
	"#FF6B6B", "#4ECDC4", "#45B7D1", "#96CEB4", "#FFEAA7",
	"#DDA0DD", "#98D8C8", "#F7DC6F", "#BB8FCE", "#85C1E9",
}

// PresetGradients are the gradient descriptors offered by the picker
var PresetGradients = []string{
	"linear-gradient(135deg, #667eea 0%, #764ba2 100%)",
	"linear-gradient(135deg, #f093fb 0%, #f5576c 100%)",
	"linear-gradient(135deg, #4facfe 0%, #00f2fe 100%)",
	"linear-gradient(135deg, #43e97b 0%, #38f9d7 100%)",
	"linear-gradient(135deg, #fa709a 0%, #fee140 100%)",
	"linear-gradient(135deg, #a8edea 0%, #fed6e3 100%)",
	"linear-gradient(135deg, #ffecd2 0%, #fcb69f 100%)",
	"linear-gradient(135deg, #ff9a9e 0%, #fecfef 100%)",
	"linear-gradient(135deg, #a1c4fd 0%, #c2e9fb 100%)",
	"linear-gradient(135deg, #fbc2eb 0%, #a6c1ee 100%)",
}
