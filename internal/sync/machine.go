package sync

import (
	"strings"

	"wikipen/internal/confluence"
)

// PromptKind says how a host should render a prompt.
type PromptKind int

const (
	// PromptInput asks for one line of free text.
	PromptInput PromptKind = iota
	// PromptSelect asks for a choice out of Options.
	PromptSelect
)

type Prompt struct {
	Kind    PromptKind
	Message string
	Options []string
}

// Answer is the host's reply to a Prompt. Text answers input prompts, Index
// answers selection prompts, and Cancelled abandons the whole operation.
type Answer struct {
	Text      string
	Index     int
	Cancelled bool
}

type fetchState int

const (
	stateNeedSpaceKey fetchState = iota
	stateNeedTitle
	stateNeedChoice
	stateDone
)

// Fetch is a resumable page lookup. The continuation between prompts is
// plain data (a state tag plus captured parameters), so a host can park a
// Fetch across asynchronous prompt callbacks.
type Fetch struct {
	syncer *Syncer

	state      fetchState
	spaceKey   string
	allSpaces  bool
	candidates []confluence.Page
}

// StartFetch begins an interactive lookup and returns the first prompt.
// The space prompt is skipped when searching all spaces or when the config
// carries a default space key.
func (s *Syncer) StartFetch(allSpaces bool) (*Fetch, *Prompt) {
	f := &Fetch{syncer: s, allSpaces: allSpaces}

	if allSpaces {
		f.state = stateNeedTitle
		return f, titlePrompt()
	}
	if key := s.cfg.Confluence.DefaultSpaceKey; key != "" {
		f.spaceKey = key
		f.state = stateNeedTitle
		return f, titlePrompt()
	}

	f.state = stateNeedSpaceKey
	return f, &Prompt{Kind: PromptInput, Message: "Space key"}
}

// Resume consumes one answer and yields either the next prompt or the
// terminal result; exactly one of the two is non-nil. An empty space key
// widens the search to all spaces; an empty title asks again.
func (f *Fetch) Resume(answer Answer) (*Result, *Prompt) {
	if answer.Cancelled {
		f.state = stateDone
		return &Result{Outcome: Cancelled}, nil
	}

	switch f.state {
	case stateNeedSpaceKey:
		f.spaceKey = strings.TrimSpace(answer.Text)
		f.state = stateNeedTitle
		return nil, titlePrompt()

	case stateNeedTitle:
		fragment := strings.TrimSpace(answer.Text)
		if fragment == "" {
			return nil, titlePrompt()
		}

		pages, err := f.syncer.client.SearchContent(f.searchSpace(), fragment)
		if err != nil {
			f.state = stateDone
			return &Result{Outcome: RemoteRejected, Err: err}, nil
		}
		if len(pages) == 0 {
			f.state = stateDone
			return preconditionFailed("no pages match '%s'", fragment), nil
		}

		f.candidates = pages
		f.state = stateNeedChoice

		titles := make([]string, len(pages))
		for i, p := range pages {
			titles[i] = p.Title
		}
		return nil, &Prompt{Kind: PromptSelect, Message: "Select a page", Options: titles}

	case stateNeedChoice:
		if answer.Index < 0 || answer.Index >= len(f.candidates) {
			f.state = stateDone
			return preconditionFailed("selection %d is out of range", answer.Index), nil
		}
		chosen := f.candidates[answer.Index]

		// The search result is shallow; fetch the full record
		page, err := f.syncer.client.ContentByID(chosen.ID)
		if err != nil {
			f.state = stateDone
			return &Result{Outcome: RemoteRejected, Err: err}, nil
		}

		f.state = stateDone
		result := &Result{Outcome: Succeeded, Record: page}
		if url, uerr := CanonicalURL(page); uerr == nil {
			result.URL = url
		}
		return result, nil
	}

	return nil, nil
}

func (f *Fetch) searchSpace() string {
	if f.allSpaces {
		return ""
	}
	return f.spaceKey
}

func titlePrompt() *Prompt {
	return &Prompt{Kind: PromptInput, Message: "Page title"}
}
