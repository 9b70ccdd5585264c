// Package cookie carries session entries in HTTP cookies for one request.
package cookie

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

const contextKey = "cookie_jar"

// Options are applied to every cookie the jar writes.
type Options struct {
	Secure   bool
	Path     string
	SameSite http.SameSite
}

func (o Options) withDefaults() Options {
	if o.Path == "" {
		o.Path = "/"
	}
	if o.SameSite == 0 {
		o.SameSite = http.SameSiteLaxMode
	}
	return o
}

// Jar reads request cookies and writes response cookies. Values set or deleted
// during the request shadow the request cookies for later reads.
type Jar struct {
	c       echo.Context
	opts    Options
	overlay map[string]*string
}

func NewJar(c echo.Context, opts Options) *Jar {
	return &Jar{c: c, opts: opts.withDefaults(), overlay: make(map[string]*string)}
}

func (j *Jar) Get(name string) (string, bool) {
	if v, ok := j.overlay[name]; ok {
		if v == nil {
			return "", false
		}
		return *v, true
	}
	ck, err := j.c.Cookie(name)
	if err != nil {
		return "", false
	}
	return ck.Value, true
}

func (j *Jar) Set(name, value string, expires time.Time) {
	j.c.SetCookie(&http.Cookie{
		Name:     name,
		Value:    value,
		Path:     j.opts.Path,
		Expires:  expires,
		HttpOnly: true,
		Secure:   j.opts.Secure,
		SameSite: j.opts.SameSite,
	})
	v := value
	j.overlay[name] = &v
}

func (j *Jar) Delete(name string) {
	j.c.SetCookie(&http.Cookie{
		Name:     name,
		Value:    "",
		Path:     j.opts.Path,
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   j.opts.Secure,
		SameSite: j.opts.SameSite,
	})
	j.overlay[name] = nil
}

// Middleware attaches one Jar per request so every layer shares its view.
func Middleware(opts Options) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set(contextKey, NewJar(c, opts))
			return next(c)
		}
	}
}

// FromContext returns the request's Jar, creating one with default options
// when Middleware did not run.
func FromContext(c echo.Context) *Jar {
	if j, ok := c.Get(contextKey).(*Jar); ok {
		return j
	}
	j := NewJar(c, Options{})
	c.Set(contextKey, j)
	return j
}
