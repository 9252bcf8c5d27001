package sis

import (
	"context"
	"fmt"
	"net/http"

	"sisassist-backend/pkg/htmlutil"

	"github.com/PuerkitoBio/goquery"
)

// navigation mirrors the server-side "focused class" of a session. The server decides what
// class the assignment page shows based on the last class that was selected on the class
// list, so any request that depends on it must first select the class.
//
// All methods must be called with the Session mutex held.
type navigation struct {
	// classList is the last class list page, its form carries the hidden state the
	// server needs to accept a selection.
	classList *goquery.Document
	focused   ClassToken
}

func (n *navigation) reset() {
	n.classList = nil
	n.focused = ClassToken{}
}

// fetchClassList re-fetches the class list and replaces the cached copy, this is the only
// thing that clears the cache.
func (s *Session) fetchClassList(ctx context.Context) (*goquery.Document, error) {
	p, err := s.client.fetch(ctx, http.MethodGet, endpoint_classes, nil)
	if err != nil {
		return nil, err
	}
	err = p.check()
	if err != nil {
		return nil, err
	}
	if p.doc.Find("form#classForm").Length() == 0 {
		return nil, fmt.Errorf("%w: class list has no selection form", ErrInvalidSession)
	}

	s.nav.classList = p.doc
	s.nav.focused = ClassToken{}
	return p.doc, nil
}

// ensureFocus makes token the server's focused class and returns the page the server
// answered with (the class detail page). The selection is always re-submitted, the server
// may have changed focus on its own since the last time.
func (s *Session) ensureFocus(ctx context.Context, token ClassToken) (page, error) {
	if token.IsZero() {
		return page{}, fmt.Errorf("%w: empty class token", ErrUnknownClass)
	}
	if token.origin != s.id {
		return page{}, fmt.Errorf("%w: token %q belongs to another session", ErrUnknownClass, token.value)
	}

	classList := s.nav.classList
	if classList == nil {
		var err error
		classList, err = s.fetchClassList(ctx)
		if err != nil {
			return page{}, err
		}
	}

	form := classList.Find("form#classForm")
	if form.Length() == 0 {
		return page{}, fmt.Errorf("%w: class list has no selection form", ErrInvalidSession)
	}
	fields := htmlutil.HiddenFields(form)
	fields["__EVENTTARGET"] = focusEventTarget
	fields["__EVENTARGUMENT"] = token.value

	p, err := s.client.fetch(ctx, http.MethodPost, endpoint_classes, fields)
	if err != nil {
		return page{}, err
	}
	if p.contains(marker_unknown_class) {
		return page{}, fmt.Errorf("%w: %q", ErrUnknownClass, token.value)
	}
	err = p.check()
	if err != nil {
		return page{}, err
	}

	s.nav.focused = token
	return p, nil
}
