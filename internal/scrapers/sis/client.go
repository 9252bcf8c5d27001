// client.go contains everything that talks http to the SIS, it knows how to reach pages and
// how to tell what kind of page came back but not how to navigate or decode them.

package sis

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"sisassist-backend/internal/components/assert"
	"sisassist-backend/internal/components/telemetry"
	"sisassist-backend/pkg/htmlutil"
	"sisassist-backend/pkg/restyutil"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"golang.org/x/time/rate"
)

var tracer = otel.Tracer("sisassist/sis")

const (
	endpoint_root            = "/"
	endpoint_login           = "/Login.aspx"
	endpoint_classes         = "/Student/Classes.aspx"
	endpoint_assignments     = "/Student/Assignments.aspx"
	endpoint_schedule        = "/Student/Schedule.aspx"
	endpoint_schedule_matrix = "/Student/ScheduleMatrix.aspx"
)

const (
	deploymentId     = "sis-portal"
	focusEventTarget = "ctl00$Main$SelectClass"
	dataCellClass    = "DataCell"

	marker_invalid_login   = "Invalid username or password"
	marker_session_expired = "Your session has expired"
	marker_unknown_class   = "The selected class is not available"
)

const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36"

type clientOptions struct {
	baseUrl           string
	requestsPerSecond float64
	burst             int
	timeout           time.Duration
	cloudflareBypass  bool
	// dump receives every request and response when set
	dump restyutil.Output
}

type client struct {
	baseUrl *url.URL
	http    *resty.Client
	jar     *cookieJar

	tel telemetry.API
}

func newClient(opts clientOptions, tel telemetry.API) (*client, error) {
	assert.NotNil(tel)

	parsedBaseUrl, err := url.Parse(opts.baseUrl)
	if err != nil {
		return nil, err
	}
	if parsedBaseUrl.Scheme == "" || parsedBaseUrl.Host == "" {
		return nil, fmt.Errorf("base url %q must be absolute", opts.baseUrl)
	}

	httpClient := resty.New()
	httpClient.SetBaseURL(strings.TrimSuffix(opts.baseUrl, "/"))
	jar, err := newCookieJar()
	if err != nil {
		return nil, err
	}
	httpClient.SetCookieJar(jar)
	if opts.cloudflareBypass {
		httpClient.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(httpClient.GetClient().Transport)
	}

	httpClient.SetHeader("user-agent", userAgent)
	httpClient.SetRedirectPolicy(
		resty.FlexibleRedirectPolicy(10),
		resty.DomainCheckRedirectPolicy(parsedBaseUrl.Hostname()),
	)
	httpClient.SetTimeout(opts.timeout)

	if opts.requestsPerSecond > 0 {
		// max burst >= 1 just means that no requests will be dropped
		burst := max(opts.burst, 1)
		rateLimiter := rate.NewLimiter(rate.Limit(opts.requestsPerSecond), burst)
		httpClient.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
			return rateLimiter.Wait(req.Context())
		})
	}

	telemetry.InstrumentResty(httpClient, tel)
	restyutil.InstrumentClient(httpClient, tracer, opts.dump)

	return &client{
		baseUrl: parsedBaseUrl,
		http:    httpClient,
		jar:     jar,
		tel:     tel,
	}, nil
}

// page is a fetched and parsed html response.
type page struct {
	res  *resty.Response
	doc  *goquery.Document
	body string
}

func (p page) contains(marker string) bool {
	return strings.Contains(p.body, marker)
}

// finalPath is the path of the last request made after following redirects.
func (p page) finalPath() string {
	if p.res.RawResponse == nil || p.res.RawResponse.Request == nil {
		return p.res.Request.URL
	}
	return p.res.RawResponse.Request.URL.Path
}

// sessionDropped is true when the server answered with its expiry notice or sent us back
// to the login page.
func (p page) sessionDropped() bool {
	return p.contains(marker_session_expired) || p.doc.Find("form#loginForm").Length() > 0
}

// check classifies a page that is expected to carry data.
func (p page) check() error {
	if p.sessionDropped() {
		return fmt.Errorf("%w: server sent %s", ErrInvalidSession, p.finalPath())
	}
	if p.res.IsError() {
		return fmt.Errorf("%w: %s", ErrGeneric500, p.res.Status())
	}
	return nil
}

func (c *client) fetch(ctx context.Context, method, endpoint string, form map[string]string) (page, error) {
	req := c.http.R().SetContext(ctx)
	if form != nil {
		req.SetFormData(form)
	}
	res, err := req.Execute(method, endpoint)
	if err != nil {
		return page{}, fmt.Errorf("%w: %s %s: %w", ErrConnection, method, endpoint, err)
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(res.Body()))
	if err != nil {
		return page{}, fmt.Errorf("%w: parse %s: %w", ErrDecode, endpoint, err)
	}
	return page{res: res, doc: doc, body: string(res.Body())}, nil
}

// bootstrap loads the unauthenticated entry page (which sets the server session cookie) and
// returns the hidden fields of its login form verbatim.
func (c *client) bootstrap(ctx context.Context) (map[string]string, error) {
	p, err := c.fetch(ctx, http.MethodGet, endpoint_root, nil)
	if err != nil {
		return nil, err
	}
	if p.res.IsError() {
		return nil, fmt.Errorf("%w: entry page: %s", ErrGeneric500, p.res.Status())
	}
	form := p.doc.Find("form#loginForm")
	if form.Length() == 0 {
		if p.contains(marker_session_expired) {
			return nil, fmt.Errorf("%w: entry page", ErrInvalidSession)
		}
		return nil, fmt.Errorf("%w: could not find login form", ErrDecode)
	}
	return htmlutil.HiddenFields(form), nil
}

func (c *client) login(ctx context.Context, username, password string) error {
	fields, err := c.bootstrap(ctx)
	if err != nil {
		return err
	}
	fields["username"] = username
	fields["password"] = password
	fields["deploymentId"] = deploymentId

	p, err := c.fetch(ctx, http.MethodPost, endpoint_login, fields)
	if err != nil {
		return err
	}
	return classifyLogin(p)
}

// classifyLogin decides the outcome of a login POST from the page it ended on.
func classifyLogin(p page) error {
	switch {
	case p.contains(marker_invalid_login):
		return ErrInvalidLogin
	case p.contains(marker_session_expired):
		return fmt.Errorf("%w: login rejected", ErrInvalidSession)
	// the post-login redirect to the home page is replayed as a POST which the home page
	// refuses, the login itself went through.
	case p.res.StatusCode() == http.StatusMethodNotAllowed && p.finalPath() != endpoint_login:
		return nil
	case p.res.IsError():
		return fmt.Errorf("%w: login: %s", ErrGeneric500, p.res.Status())
	}
	return nil
}

func (c *client) exportCookies() []Cookie {
	return c.jar.export()
}

func (c *client) importCookies(cookies []Cookie) {
	c.jar.restore(c.baseUrl, cookies)
}
