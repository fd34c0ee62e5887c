package extract

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/scholium/acmgrab/internal/authorcache"
	"github.com/scholium/acmgrab/internal/browse"
	"github.com/scholium/acmgrab/internal/paper"
)

// lessToggle is the visible text of the collapse control that list
// expansion leaves behind among the author entries. It is UI, not an author.
const lessToggle = "(Less)"

// AuthorResolver resolves author entries against the cache, fetching profile
// pages only for ids never seen before.
type AuthorResolver struct {
	Session browse.Session
	Cache   *authorcache.Cache
}

// Resolve expands a folded author list, resolves each entry in order, and
// flushes the cache once the whole list is done. The returned slice is
// non-nil, possibly empty.
func (r *AuthorResolver) Resolve(ctx context.Context, list browse.Element) ([]paper.AuthorRef, error) {
	// A "show N more" control means the list renders folded. Expansion is
	// idempotent and must precede enumeration.
	if expand, ok := list.Find(browse.AuthorExpand); ok {
		if err := r.Session.Activate(ctx, expand); err != nil {
			return nil, fmt.Errorf("expanding author list: %w", err)
		}
	}

	authors := []paper.AuthorRef{}
	for _, item := range list.FindAll(browse.AuthorItem) {
		link, ok := item.Find(browse.AuthorLink)
		if !ok {
			continue
		}
		ref, ok, err := r.resolveOne(ctx, link)
		if err != nil {
			return nil, err
		}
		if ok {
			authors = append(authors, ref)
		}
	}

	// Flushing once per record's list keeps lookups durable across
	// crashes without paying a write per author.
	if err := r.Cache.Flush(); err != nil {
		return nil, fmt.Errorf("flushing author cache: %w", err)
	}

	return authors, nil
}

// resolveOne resolves a single author link. The second return is false for
// entries that are list UI rather than authors.
func (r *AuthorResolver) resolveOne(ctx context.Context, link browse.Element) (paper.AuthorRef, bool, error) {
	name := link.Text()
	if name == lessToggle {
		return paper.AuthorRef{}, false, nil
	}

	href, ok := link.Attr("href")
	if !ok || !strings.Contains(href, "profile") {
		// No profile page exists: the display name is the only handle.
		return paper.AuthorRef{Name: name, ID: name}, true, nil
	}

	id := path.Base(href)
	if cached, ok := r.Cache.Get(id); ok {
		return paper.AuthorRef{Name: name, ID: id, Email: cached.Email}, true, nil
	}

	email, err := r.fetchEmail(ctx, link)
	if err != nil {
		return paper.AuthorRef{}, false, err
	}

	r.Cache.Put(id, authorcache.Entry{Name: name, Email: email})
	return paper.AuthorRef{Name: name, ID: id, Email: email}, true, nil
}

// fetchEmail visits the author's profile page and returns to the listing.
func (r *AuthorResolver) fetchEmail(ctx context.Context, link browse.Element) (*string, error) {
	if err := r.Session.Activate(ctx, link); err != nil {
		return nil, fmt.Errorf("opening author profile: %w", err)
	}

	var email *string
	if mail, ok := r.Session.Find(browse.ProfileEmail); ok {
		if href, ok := mail.Attr("href"); ok {
			addr := strings.TrimPrefix(href, "mailto:")
			email = &addr
		}
	}

	if err := r.Session.Back(ctx); err != nil {
		return nil, fmt.Errorf("returning from author profile: %w", err)
	}
	return email, nil
}
