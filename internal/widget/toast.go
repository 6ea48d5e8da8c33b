package widget

import "encoding/json"

// ToastClass tags the severity of a Toast shown to the team after an
// action.
type ToastClass string

const (
	ToastSuccess ToastClass = "success"
	ToastWarning ToastClass = "warning"
	ToastDanger  ToastClass = "danger"
)

// ToastMessageKind tags one of the fixed, translatable toast messages a
// widget can produce, or toastCustom for a widget-configured override.
type ToastMessageKind string

const (
	ToastSolutionCorrect   ToastMessageKind = "solution-correct"
	ToastSolutionIncorrect ToastMessageKind = "solution-incorrect"
	ToastHintTaken         ToastMessageKind = "hint-taken"
	toastCustom            ToastMessageKind = "custom"
)

// ToastMessage is a typed toast message: one of the fixed kinds, or a
// widget-supplied custom string. It marshals as the bare kebab-case kind
// string for a fixed kind, or as {"custom": "..."} for an override.
type ToastMessage struct {
	Kind   ToastMessageKind
	Custom string
}

// Override returns m unless custom is set, in which case it returns a
// custom message carrying it: the common "use the fixed message unless
// the widget configured an override" pattern.
func (m ToastMessage) Override(custom string) ToastMessage {
	if custom == "" {
		return m
	}
	return ToastMessage{Kind: toastCustom, Custom: custom}
}

func (m ToastMessage) MarshalJSON() ([]byte, error) {
	if m.Kind == toastCustom {
		return json.Marshal(struct {
			Custom string `json:"custom"`
		}{m.Custom})
	}
	return json.Marshal(string(m.Kind))
}

// Toast is a short message shown to the team in response to an action.
type Toast struct {
	Message ToastMessage `json:"message"`
	Class   ToastClass   `json:"class"`
}
