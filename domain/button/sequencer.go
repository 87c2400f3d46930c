package button

import (
	"fmt"
	"path/filepath"
)

// SelectAction builds the update and phone instruction for the press that
// has already seen counter presses. Once items are exhausted it returns a
// "push N" ping with the 1-based press number.
func SelectAction(items []ActionItem, counter int) (Update, PhoneInstruction) {
	if counter < 0 {
		counter = 0
	}
	if counter >= len(items) {
		return Update{Text: fmt.Sprintf("push %d", counter+1)}, PhoneInstruction{}
	}

	item := items[counter]
	var update Update
	var phone PhoneInstruction

	// markdown takes precedence, the two are never combined
	if item.Markdown != "" {
		update.Markdown = item.Markdown
	} else if item.Message != "" {
		update.Text += item.Message + "\n"
	}

	if item.File != nil && item.File.Path != "" {
		file := *item.File
		if file.Label == "" {
			file.Label = filepath.Base(file.Path)
		}
		if file.MimeType == "" {
			file.MimeType = DefaultMimeType
		}
		update.Text += fmt.Sprintf("'%s'\n", file.Label)
		update.File = &file
	}

	if item.SMS != nil {
		sms := *item.SMS
		phone.SMS = &sms
	}
	if item.Call != nil {
		call := *item.Call
		phone.Call = &call
	}

	return update, phone
}
