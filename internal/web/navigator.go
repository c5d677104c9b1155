package web

import "net/http"

// redirectNavigator adapts the flow controller's Navigator collaborator to
// an HTTP redirect on the current response. Navigating is the server-side
// equivalent of the browser unloading the page.
type redirectNavigator struct {
	w         http.ResponseWriter
	r         *http.Request
	navigated bool
}

func (n *redirectNavigator) NavigateTo(url string) error {
	http.Redirect(n.w, n.r, url, http.StatusFound)
	n.navigated = true
	return nil
}
