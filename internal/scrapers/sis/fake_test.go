package sis

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"
)

const (
	fakeSessionCookie = "ASP.NET_SessionId"
	fakeAuthCookie    = ".ASPXAUTH"
	// fakeViewCookie is only sent back to pages under /Student
	fakeViewCookie = "classView"
)

type fakeDetail struct {
	// absent, tardy, dismissed: terms 1-4 then total
	attendance [3][5]string
	// weight, score rows for assessment, practice, responsibility: terms 1-4
	grades [6][4]string
}

type fakeAssignment struct {
	name     string
	assigned string
	due      string
	days     string
	grade    []string
	feedback string
}

type fakeClass struct {
	token       string
	code        string
	name        string
	term        string
	grade       string
	teacher     string
	email       string
	room        string
	absent      int
	tardy       int
	dismissed   int
	detail      fakeDetail
	assignments []fakeAssignment
}

type fakeSession struct {
	auth    string
	expired bool
	focused string
	primed  bool
}

// fakeSIS emulates the server, it keeps the focused class server-side per session cookie
// just like the real thing.
type fakeSIS struct {
	t      testing.TB
	server *httptest.Server

	mutex    sync.Mutex
	username string
	password string
	classes  []fakeClass
	schedule string
	sessions map[string]*fakeSession
	nextId   int
	// loginStatus makes the login endpoint answer with a fixed status instead of logging in
	loginStatus int
	// delay is slept on every navigation request to widen any race window
	delay time.Duration
}

func newFakeSIS(t testing.TB) *fakeSIS {
	f := &fakeSIS{
		t:        t,
		username: "student",
		password: "hunter2",
		classes:  fakeClasses(),
		schedule: fakeSchedulePage,
		sessions: map[string]*fakeSession{},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/", f.handleRoot)
	mux.HandleFunc("/Login.aspx", f.handleLogin)
	mux.HandleFunc("/Student/Home.aspx", f.handleHome)
	mux.HandleFunc("/Student/Classes.aspx", f.handleClasses)
	mux.HandleFunc("/Student/Assignments.aspx", f.handleAssignments)
	mux.HandleFunc("/Student/Schedule.aspx", f.handleSchedule)
	mux.HandleFunc("/Student/ScheduleMatrix.aspx", f.handleScheduleMatrix)

	f.server = httptest.NewServer(mux)
	t.Cleanup(f.server.Close)
	return f
}

func (f *fakeSIS) newSession(t testing.TB, opts ...Option) *Session {
	opts = append([]Option{
		WithBaseURL(f.server.URL),
		WithRateLimit(0, 0),
		WithTimeout(5 * time.Second),
	}, opts...)
	s, err := NewSession("test", opts...)
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func (f *fakeSIS) expireAll() {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	for _, sess := range f.sessions {
		sess.expired = true
	}
}

func (f *fakeSIS) class(token string) (fakeClass, bool) {
	for _, c := range f.classes {
		if c.token == token {
			return c, true
		}
	}
	return fakeClass{}, false
}

func writePage(w http.ResponseWriter, status int, body string) {
	w.Header().Set("content-type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	fmt.Fprint(w, htmlPage(body))
}

// lookup returns the session of a request, the caller must hold the mutex.
func (f *fakeSIS) lookup(r *http.Request) *fakeSession {
	cookie, err := r.Cookie(fakeSessionCookie)
	if err != nil {
		return nil
	}
	return f.sessions[cookie.Value]
}

// authed returns the authenticated session of a request or writes the response an
// unauthenticated request gets, the caller must hold the mutex.
func (f *fakeSIS) authed(w http.ResponseWriter, r *http.Request) *fakeSession {
	sess := f.lookup(r)
	if sess != nil && sess.expired {
		writePage(w, http.StatusOK, `<p>Your session has expired. Please log in again.</p>`)
		return nil
	}
	auth, err := r.Cookie(fakeAuthCookie)
	if sess == nil || sess.auth == "" || err != nil || auth.Value != sess.auth {
		http.Redirect(w, r, "/", http.StatusFound)
		return nil
	}
	return sess
}

func (f *fakeSIS) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	f.mutex.Lock()
	defer f.mutex.Unlock()

	if f.lookup(r) == nil {
		f.nextId++
		id := fmt.Sprintf("session-%d", f.nextId)
		f.sessions[id] = &fakeSession{}
		http.SetCookie(w, &http.Cookie{Name: fakeSessionCookie, Value: id, Path: "/"})
	}
	writePage(w, http.StatusOK, loginForm(""))
}

func (f *fakeSIS) handleLogin(w http.ResponseWriter, r *http.Request) {
	f.mutex.Lock()
	defer f.mutex.Unlock()

	if f.loginStatus != 0 {
		writePage(w, f.loginStatus, `<p>Something went wrong.</p>`)
		return
	}
	if r.Method != http.MethodPost {
		writePage(w, http.StatusMethodNotAllowed, "")
		return
	}
	sess := f.lookup(r)
	if sess == nil {
		writePage(w, http.StatusOK, `<p>Your session has expired. Please log in again.</p>`)
		return
	}
	err := r.ParseForm()
	if err != nil ||
		r.PostForm.Get("__VIEWSTATE") != "login-state" ||
		r.PostForm.Get("__EVENTVALIDATION") != "login-validation" ||
		r.PostForm.Get("deploymentId") != "sis-portal" {
		writePage(w, http.StatusInternalServerError, `<p>Runtime Error</p>`)
		return
	}
	if r.PostForm.Get("username") != f.username || r.PostForm.Get("password") != f.password {
		writePage(w, http.StatusOK, loginForm("Invalid username or password."))
		return
	}

	f.nextId++
	sess.auth = fmt.Sprintf("auth-%d", f.nextId)
	sess.expired = false
	sess.focused = ""
	sess.primed = false
	http.SetCookie(w, &http.Cookie{Name: fakeAuthCookie, Value: sess.auth, Path: "/"})
	// the real server redirects with a method preserving status
	http.Redirect(w, r, "/Student/Home.aspx", http.StatusTemporaryRedirect)
}

func (f *fakeSIS) handleHome(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writePage(w, http.StatusMethodNotAllowed, `<p>The requested resource does not support this method.</p>`)
		return
	}
	writePage(w, http.StatusOK, `<h1>Welcome</h1>`)
}

func (f *fakeSIS) handleClasses(w http.ResponseWriter, r *http.Request) {
	f.mutex.Lock()
	sess := f.authed(w, r)
	if sess == nil {
		f.mutex.Unlock()
		return
	}

	if r.Method == http.MethodGet {
		defer f.mutex.Unlock()
		http.SetCookie(w, &http.Cookie{Name: fakeViewCookie, Value: "grid", Path: "/Student"})
		writePage(w, http.StatusOK, classListPage(f.classes))
		return
	}

	err := r.ParseForm()
	if err != nil ||
		r.PostForm.Get("__VIEWSTATE") != "classes-state" ||
		r.PostForm.Get("__EVENTVALIDATION") != "classes-validation" ||
		r.PostForm.Get("__EVENTTARGET") != focusEventTarget {
		defer f.mutex.Unlock()
		writePage(w, http.StatusInternalServerError, `<p>Runtime Error</p>`)
		return
	}
	class, ok := f.class(r.PostForm.Get("__EVENTARGUMENT"))
	if !ok {
		defer f.mutex.Unlock()
		writePage(w, http.StatusOK, `<p class="error">The selected class is not available.</p>`)
		return
	}
	sess.focused = class.token
	delay := f.delay
	f.mutex.Unlock()

	time.Sleep(delay)
	writePage(w, http.StatusOK, detailPage(class.detail))
}

func (f *fakeSIS) handleAssignments(w http.ResponseWriter, r *http.Request) {
	f.mutex.Lock()
	sess := f.authed(w, r)
	if sess == nil {
		f.mutex.Unlock()
		return
	}
	class, ok := f.class(sess.focused)
	delay := f.delay
	f.mutex.Unlock()

	time.Sleep(delay)
	if !ok {
		writePage(w, http.StatusInternalServerError, `<p>Object reference not set to an instance of an object.</p>`)
		return
	}
	writePage(w, http.StatusOK, assignmentPage(class.assignments))
}

func (f *fakeSIS) handleSchedule(w http.ResponseWriter, r *http.Request) {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	sess := f.authed(w, r)
	if sess == nil {
		return
	}
	sess.primed = true
	writePage(w, http.StatusOK, `<iframe src="/Student/ScheduleMatrix.aspx"></iframe>`)
}

func (f *fakeSIS) handleScheduleMatrix(w http.ResponseWriter, r *http.Request) {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	sess := f.authed(w, r)
	if sess == nil {
		return
	}
	if !sess.primed {
		writePage(w, http.StatusInternalServerError, `<p>Runtime Error</p>`)
		return
	}
	writePage(w, http.StatusOK, f.schedule)
}

func htmlPage(body string) string {
	return "<!DOCTYPE html><html><head><title>Student Portal</title></head><body>\n" + body + "\n</body></html>"
}

func loginForm(message string) string {
	return fmt.Sprintf(`<div class="error">%s</div>
<form id="loginForm" method="post" action="/Login.aspx">
	<input type="hidden" name="__VIEWSTATE" value="login-state">
	<input type="hidden" name="__EVENTVALIDATION" value="login-validation">
	<input type="hidden" name="deploymentId" value="">
	<input type="text" name="username">
	<input type="password" name="password">
	<input type="submit" value="Sign In">
</form>`, message)
}

func cell(content string) string {
	return `<td class="DataCell">` + content + `</td>`
}

func classRow(c fakeClass) string {
	var sb strings.Builder
	sb.WriteString("<tr>")
	sb.WriteString(cell(fmt.Sprintf(`<input type="image" name="select" data-token="%s" src="/img/select.png">`, c.token)))
	sb.WriteString(cell(c.code))
	sb.WriteString(cell(`<a href="#">` + c.name + `</a>`))
	sb.WriteString(cell(c.term))
	sb.WriteString(cell("1-4"))
	sb.WriteString(cell(c.grade))
	sb.WriteString(cell(c.teacher))
	sb.WriteString(cell(fmt.Sprintf(`<a href="mailto:%s">%s</a>`, c.email, c.email)))
	sb.WriteString(cell(c.room))
	sb.WriteString(cell(fmt.Sprint(c.absent)))
	sb.WriteString(cell(fmt.Sprint(c.tardy)))
	sb.WriteString(cell(fmt.Sprint(c.dismissed)))
	sb.WriteString("</tr>\n")
	return sb.String()
}

func classListPage(classes []fakeClass) string {
	var rows strings.Builder
	for _, c := range classes {
		rows.WriteString(classRow(c))
	}
	return fmt.Sprintf(`<form id="classForm" method="post" action="/Student/Classes.aspx">
	<input type="hidden" name="__EVENTTARGET" value="">
	<input type="hidden" name="__EVENTARGUMENT" value="">
	<input type="hidden" name="__VIEWSTATE" value="classes-state">
	<input type="hidden" name="__EVENTVALIDATION" value="classes-validation">
	<table id="classList">
		<tr><th></th><th>Course</th><th>Name</th><th>Term</th><th>Terms</th><th>Grade</th>
			<th>Teacher</th><th>Email</th><th>Room</th><th>Abs</th><th>Tdy</th><th>Dis</th></tr>
		%s
	</table>
</form>`, rows.String())
}

func detailPage(d fakeDetail) string {
	var attendance strings.Builder
	for i, label := range []string{"Absent", "Tardy", "Dismissed"} {
		attendance.WriteString("<tr>" + cell(label))
		for _, v := range d.attendance[i] {
			attendance.WriteString(cell(v))
		}
		attendance.WriteString("</tr>\n")
	}

	var grades strings.Builder
	labels := []string{
		"Assessment Weight", "Assessment",
		"Practice Weight", "Practice",
		"Responsibility Weight", "Responsibility",
	}
	for i, label := range labels {
		grades.WriteString("<tr>" + cell(label))
		for _, v := range d.grades[i] {
			grades.WriteString(cell(v))
		}
		grades.WriteString("</tr>\n")
	}
	grades.WriteString("<tr>" + cell("Term Grade") + cell("88 B+") + cell("") + cell("") + cell("") + "</tr>\n")
	grades.WriteString("<tr>" + cell("Comments") + cell("Good work") + cell("") + cell("") + cell("") + "</tr>\n")

	return fmt.Sprintf(`<h2>Class Detail</h2>
<table id="attendance">
	<tr><th></th><th>T1</th><th>T2</th><th>T3</th><th>T4</th><th>Total</th></tr>
	%s
</table>
<table id="grades">
	<tr><th></th><th>T1</th><th>T2</th><th>T3</th><th>T4</th></tr>
	%s
</table>`, attendance.String(), grades.String())
}

func assignmentRow(a fakeAssignment) string {
	var gradeRows strings.Builder
	for _, g := range a.grade {
		gradeRows.WriteString("<tr><td>" + g + "</td></tr>")
	}
	return "<tr>" +
		cell(a.name) +
		cell(a.assigned) +
		cell(a.due) +
		cell(a.days) +
		cell(`<table class="GradeTable">`+gradeRows.String()+`</table>`) +
		cell(a.feedback) +
		"</tr>\n"
}

func assignmentPage(assignments []fakeAssignment) string {
	var rows strings.Builder
	for _, a := range assignments {
		rows.WriteString(assignmentRow(a))
	}
	return fmt.Sprintf(`<table id="assignments">
	<tr><th>Assignment</th><th>Assigned</th><th>Due</th><th>Days</th><th>Grade</th><th>Feedback</th></tr>
	%s
</table>`, rows.String())
}

const fakeSchedulePage = `<table id="scheduleMatrix">
	<tr>
		<th>Period</th>
		<th>A - Monday</th>
		<th style="background-color: #ffffcc">B - Tuesday</th>
		<th>C - Wednesday</th>
	</tr>
	<tr>
		<td class="PeriodCell">1</td>
		<td><div>MTH201<br>Algebra II<br>Jane Doe<br>B140</div></td>
		<td style="border: 2px solid #cc0000"><div>SCI310<br>AP Biology<br>Sam Lee<br>S12</div></td>
		<td><div>MTH201<br>Algebra II<br>Jane Doe<br>B140</div></td>
	</tr>
	<tr>
		<td class="PeriodCell">2</td>
		<td><div>ENG110<br>English 10<br>Ann Roe<br>A2</div></td>
		<td></td>
		<td><div>ENG110<br>English 10<br>Ann Roe<br>A2</div></td>
	</tr>
</table>`

func fakeClasses() []fakeClass {
	return []fakeClass{
		{
			token:   "tok-math",
			code:    "MTH201",
			name:    "Algebra II",
			term:    "S1",
			grade:   "A 95",
			teacher: "Jane Doe",
			email:   "jdoe@school.edu",
			room:    "B140",
			absent:  2,
			tardy:   1,
			detail: fakeDetail{
				attendance: [3][5]string{
					{"1", "1", "", "", "2"},
					{"0", "1", "", "", "1"},
					{"0", "0", "", "", "0"},
				},
				grades: [6][4]string{
					{"40", "40", "40", "40"},
					{"90", "95", "", ""},
					{"40", "40", "40", "40"},
					{"80", "", "", ""},
					{"20", "20", "20", "0"},
					{"100", "100", "", ""},
				},
			},
			assignments: []fakeAssignment{
				{
					name:     "Quadratics Quiz",
					assigned: "9/1/2024",
					due:      "9/8/2024",
					days:     "M W F",
					grade:    []string{"95%", "9.5/10", "(9.5)"},
					feedback: "Nice",
				},
				{
					name:     "Unit 2 Test",
					assigned: "9/10/2024",
					due:      "9/20/2024",
					days:     "M W F",
					grade:    []string{"Ungraded"},
				},
			},
		},
		{
			token:   "tok-bio",
			code:    "SCI310",
			name:    "AP Biology",
			term:    "S1",
			grade:   "88 B+",
			teacher: "Sam Lee",
			email:   "slee@school.edu",
			room:    "S12",
			tardy:   3,
			detail: fakeDetail{
				attendance: [3][5]string{
					{"0", "0", "0", "0", "0"},
					{"3", "0", "0", "0", "3"},
					{"0", "0", "0", "0", "0"},
				},
				grades: [6][4]string{
					{"50", "50", "50", "50"},
					{"85", "", "", ""},
					{"30", "30", "30", "30"},
					{"90", "", "", ""},
					{"20", "20", "20", "20"},
					{"95", "", "", ""},
				},
			},
			assignments: []fakeAssignment{
				{
					name:     "Cell Lab",
					assigned: "2024-09-02",
					due:      "2024-09-06",
					days:     "T Th",
					grade:    []string{"88%", "22/25", "(22)"},
					feedback: "Label your axes",
				},
			},
		},
	}
}
