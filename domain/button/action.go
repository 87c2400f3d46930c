package button

const DefaultMimeType = "application/octet-stream"

// ActionItem is the configured reaction to one press. Any combination of
// fields may be set; unset fields are skipped.
type ActionItem struct {
	Message  string
	Markdown string
	File     *FileSpec
	SMS      *SMSSpec
	Call     *CallSpec
}

type FileSpec struct {
	Path     string
	Label    string
	MimeType string
}

type SMSSpec struct {
	Message string
	Numbers []string
	From    string
}

type CallSpec struct {
	Numbers []string
	From    string
	Say     string
	URL     string
}

// Update is what gets posted to the room for a press.
type Update struct {
	Text     string
	Markdown string
	File     *FileSpec
}

func (u Update) IsEmpty() bool {
	return u.Text == "" && u.Markdown == "" && u.File == nil
}

// IsPlain reports whether the update can be sent as a simple text message.
func (u Update) IsPlain() bool {
	return u.Markdown == "" && u.File == nil
}

// PhoneInstruction bundles the telephony side of a press. SMS and call are
// independent and may both be set.
type PhoneInstruction struct {
	SMS  *SMSSpec
	Call *CallSpec
}

func (p PhoneInstruction) IsEmpty() bool {
	return p.SMS == nil && p.Call == nil
}
