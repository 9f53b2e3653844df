// Package galleryapi provides the HTTP client for the remote gallery service.
//
// # Endpoints
//
//	GET    {base}/{category}    JSON array of images, newest first
//	GET    {base}/categories    JSON array of category names
//	POST   {base}/{category}    body {title,url,description} -> stored image
//	DELETE {base}/{id}          -> {"success": bool}
//
// {base} defaults to http://localhost:5000/api/gallery. A bare host:port is
// accepted and gets an http scheme.
//
// # Error Handling
//
// Every method returns an error for transport failures, responses with a
// status of 400 or above (as *StatusError) and undecodable bodies. The client
// never substitutes data of its own; degrading to fallback data is the
// catalog's decision, not the transport's.
//
// # Timeouts
//
// The underlying http.Client carries a per-request timeout (5s by default) and
// every call honours its context, so a hung service cannot block the UI
// indefinitely.
package galleryapi
