// Package httpclient is the HTTP transport used to reach a remote
// synthesis server. It resolves paths against a base URL, applies default
// headers, encodes bodies, classifies error status codes into typed
// errors and optionally guards calls with a circuit breaker.
//
//	c, err := httpclient.New(httpclient.Config{BaseURL: "http://127.0.0.1:8001"})
//	resp, err := c.Do(ctx, httpclient.Request{
//	    Method: http.MethodPost,
//	    Path:   "/synthesize",
//	    Query:  map[string]string{"speaker": "0"},
//	    Body:   pcm,
//	})
package httpclient
