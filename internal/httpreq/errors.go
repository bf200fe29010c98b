package httpreq

// ClientBuildError reports that the underlying transport client could not be
// constructed from the current settings, e.g. a malformed proxy URL.
type ClientBuildError struct {
	Err error
}

func (e *ClientBuildError) Error() string {
	return "httpreq: unable to build client: " + e.Err.Error()
}

func (e *ClientBuildError) Unwrap() error { return e.Err }

// RequestBuildError reports that a send-ready request could not be built from
// a descriptor, e.g. a malformed URL or a failed client build.
type RequestBuildError struct {
	Err error
}

func (e *RequestBuildError) Error() string {
	return "httpreq: unable to build request: " + e.Err.Error()
}

func (e *RequestBuildError) Unwrap() error { return e.Err }
