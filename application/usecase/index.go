package usecase

import (
	"fmt"
	"strings"

	"github.com/alexmorbo/bttn-relay/domain/token"
)

type IndexEntry struct {
	Label         string
	PushURL       string
	DeleteURL     string
	InitialiseURL string
}

// IndexUseCase lists the known buttons with their signed URLs.
type IndexUseCase struct {
	registry  *Registry
	codec     *token.Codec
	publicURL string
}

func NewIndexUseCase(registry *Registry, codec *token.Codec, publicURL string) *IndexUseCase {
	return &IndexUseCase{
		registry:  registry,
		codec:     codec,
		publicURL: strings.TrimRight(publicURL, "/"),
	}
}

// Execute requires the index token when tokens are signed.
func (uc *IndexUseCase) Execute(tok string) ([]IndexEntry, error) {
	if uc.codec.Signed() {
		label, err := uc.codec.Verify(tok, "")
		if err != nil {
			return nil, err
		}
		if label != token.IndexLabel {
			return nil, fmt.Errorf("%w: not an index token", token.ErrInvalidToken)
		}
	}

	tokens := uc.registry.Tokens()
	names := uc.registry.Names()
	entries := make([]IndexEntry, 0, len(names))
	for _, name := range names {
		entries = append(entries, IndexEntry{
			Label:         name,
			PushURL:       uc.publicURL + "/" + tokens[name],
			DeleteURL:     uc.publicURL + "/delete/" + tokens[name+"-"+token.ActionDelete],
			InitialiseURL: uc.publicURL + "/initialise/" + tokens[name+"-"+token.ActionInitialise],
		})
	}
	return entries, nil
}
