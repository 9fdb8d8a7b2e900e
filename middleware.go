package flowtrace

import "net/http"

// Middleware wraps an http.Handler so every request is traced. Both
// events are keyed by "<METHOD> <PATH>": Enter on arrival with the url
// and remote address, Exit with the response status code, Exception
// with re-panic when the handler panics. Events flow to the process
// default tracer.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c := Enter("http", r.Method+" "+r.URL.Path, Args{
			{Name: "url", Value: r.URL.String()},
			{Name: "remote", Value: r.RemoteAddr},
		})
		wrapped := &statusWriter{ResponseWriter: w, status: http.StatusOK}

		defer c.Recover()
		next.ServeHTTP(wrapped, r)
		c.Exit(wrapped.status)
	})
}

// statusWriter captures the response code for the Exit snapshot.
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (sw *statusWriter) WriteHeader(code int) {
	sw.status = code
	sw.ResponseWriter.WriteHeader(code)
}
