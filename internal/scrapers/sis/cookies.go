package sis

import (
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"sort"
	"strings"
	"sync"
	"time"
)

// Cookie is a serializable cookie, a list of them is enough to resume a Session.
//
// An empty Path means "/", an empty Domain means the cookie only belongs to the host it
// came from.
type Cookie struct {
	Name     string    `json:"name"`
	Value    string    `json:"value"`
	Path     string    `json:"path,omitempty"`
	Domain   string    `json:"domain,omitempty"`
	Expires  time.Time `json:"expires,omitempty"`
	Secure   bool      `json:"secure,omitempty"`
	HttpOnly bool      `json:"http_only,omitempty"`
}

type cookieKey struct {
	domain string
	path   string
	name   string
}

// cookieJar is a cookiejar.Jar that also remembers the attributes of every cookie it was
// given, the standard jar only hands back names and values.
type cookieJar struct {
	*cookiejar.Jar

	mutex   sync.Mutex
	cookies map[cookieKey]Cookie
	now     func() time.Time
}

func newCookieJar() (*cookieJar, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	return &cookieJar{
		Jar:     jar,
		cookies: map[cookieKey]Cookie{},
		now:     time.Now,
	}, nil
}

// defaultPath is the path a cookie without a Path attribute is scoped to (RFC 6265 5.1.4).
func defaultPath(u *url.URL) string {
	path := u.Path
	if path == "" || path[0] != '/' {
		return "/"
	}
	i := strings.LastIndex(path, "/")
	if i == 0 {
		return "/"
	}
	return path[:i]
}

func (j *cookieJar) SetCookies(u *url.URL, cookies []*http.Cookie) {
	j.Jar.SetCookies(u, cookies)

	j.mutex.Lock()
	defer j.mutex.Unlock()

	now := j.now()
	for _, c := range cookies {
		path := c.Path
		if path == "" || path[0] != '/' {
			path = defaultPath(u)
		}
		domain := strings.TrimPrefix(strings.ToLower(c.Domain), ".")
		host := domain
		if host == "" {
			host = strings.ToLower(u.Hostname())
		}
		key := cookieKey{domain: host, path: path, name: c.Name}

		expires := c.Expires
		if c.MaxAge > 0 {
			expires = now.Add(time.Duration(c.MaxAge) * time.Second)
		}
		if c.MaxAge < 0 || (!expires.IsZero() && !expires.After(now)) {
			delete(j.cookies, key)
			continue
		}

		j.cookies[key] = Cookie{
			Name:     c.Name,
			Value:    c.Value,
			Path:     path,
			Domain:   domain,
			Expires:  expires,
			Secure:   c.Secure,
			HttpOnly: c.HttpOnly,
		}
	}
}

// export returns every live cookie ordered by path then name.
func (j *cookieJar) export() []Cookie {
	j.mutex.Lock()
	defer j.mutex.Unlock()

	now := j.now()
	cookies := make([]Cookie, 0, len(j.cookies))
	for key, c := range j.cookies {
		if !c.Expires.IsZero() && !c.Expires.After(now) {
			delete(j.cookies, key)
			continue
		}
		cookies = append(cookies, c)
	}
	sort.Slice(cookies, func(a, b int) bool {
		if cookies[a].Path != cookies[b].Path {
			return cookies[a].Path < cookies[b].Path
		}
		if cookies[a].Name != cookies[b].Name {
			return cookies[a].Name < cookies[b].Name
		}
		return cookies[a].Domain < cookies[b].Domain
	})
	return cookies
}

// restore puts previously exported cookies back at their own paths under base.
func (j *cookieJar) restore(base *url.URL, cookies []Cookie) {
	for _, c := range cookies {
		path := c.Path
		if path == "" {
			path = "/"
		}
		target := base.ResolveReference(&url.URL{Path: path})
		j.SetCookies(target, []*http.Cookie{{
			Name:     c.Name,
			Value:    c.Value,
			Path:     path,
			Domain:   c.Domain,
			Expires:  c.Expires,
			Secure:   c.Secure,
			HttpOnly: c.HttpOnly,
		}})
	}
}
