package server

// Fixed bodies for error responses.
const (
	badRequestPage = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>400 Bad Request</title>
</head>
<body>
<h1>Oops!</h1>
<p>Sorry, I don't know what you're asking for.</p>
</body>
</html>
`

	notFoundPage = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>404 Not Found</title>
</head>
<body>
<h1>Oops!</h1>
<p>Sorry, I don't know what you're asking for.</p>
</body>
</html>
`

	methodNotAllowedPage = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>405 Method Not Allowed</title>
</head>
<body>
<h1>Oops!</h1>
<p>Only GET and HEAD are supported.</p>
</body>
</html>
`

	unavailablePage = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>503 Service Unavailable</title>
</head>
<body>
<h1>Oops!</h1>
<p>This server has finished serving.</p>
</body>
</html>
`
)
