// Package i18n holds the user-facing strings the pages show on failure.
package i18n

// MessageID names a user-facing message.
type MessageID string

const (
	WordLoadFailed      MessageID = "word_load_failed"
	SubmitFailed        MessageID = "submit_failed"
	DashboardLoadFailed MessageID = "dashboard_load_failed"
	SentenceRequired    MessageID = "sentence_required"
	WordRequired        MessageID = "word_required"
	SubmitInFlight      MessageID = "submit_in_flight"
	TooManySubmissions  MessageID = "too_many_submissions"
)

// DefaultLocale is used for unknown locales.
const DefaultLocale = "th"

var catalog = map[string]map[MessageID]string{
	"th": {
		WordLoadFailed:      "ไม่สามารถโหลด Word of the Day ได้",
		SubmitFailed:        "ส่งประโยคไม่สำเร็จ ลองใหม่อีกครั้ง",
		DashboardLoadFailed: "โหลดข้อมูล Dashboard ไม่สำเร็จ",
		SentenceRequired:    "กรุณาเขียนประโยคก่อนส่ง",
		WordRequired:        "ยังไม่มีคำศัพท์ให้ฝึก กรุณาโหลดหน้าใหม่",
		SubmitInFlight:      "กำลังส่งประโยค กรุณารอสักครู่",
		TooManySubmissions:  "ส่งบ่อยเกินไป กรุณารอสักครู่แล้วลองใหม่",
	},
	"en": {
		WordLoadFailed:      "Could not load the Word of the Day.",
		SubmitFailed:        "Could not submit your sentence. Please try again.",
		DashboardLoadFailed: "Could not load the dashboard.",
		SentenceRequired:    "Please write a sentence before submitting.",
		WordRequired:        "There is no word to practice yet. Please reload the page.",
		SubmitInFlight:      "Your sentence is being submitted, please wait.",
		TooManySubmissions:  "Too many submissions. Please wait a moment and try again.",
	},
}

// Translator resolves message ids for one locale.
type Translator struct {
	locale string
}

// New returns a Translator for locale, falling back to DefaultLocale.
func New(locale string) Translator {
	if _, ok := catalog[locale]; !ok {
		locale = DefaultLocale
	}
	return Translator{locale: locale}
}

// Locale is the resolved locale.
func (t Translator) Locale() string {
	if t.locale == "" {
		return DefaultLocale
	}
	return t.locale
}

// T returns the message for id; unknown ids come back verbatim.
func (t Translator) T(id MessageID) string {
	if msg, ok := catalog[t.Locale()][id]; ok {
		return msg
	}
	if msg, ok := catalog[DefaultLocale][id]; ok {
		return msg
	}
	return string(id)
}
