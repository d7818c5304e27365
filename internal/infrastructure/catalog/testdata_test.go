package catalog

import (
	"fmt"
	"strings"
)

// listingHTML renders a listing page in the catalog layout.
func listingHTML(total string, numbers ...string) string {
	var rows strings.Builder
	for _, n := range numbers {
		fmt.Fprintf(&rows, `<li aria-describedby="art-abs-title-%s art-abs-author-%s"><h3>Article %s</h3></li>`, n, n, n)
	}
	return fmt.Sprintf(`<html><body>
	<div id="results-blk">
	  <div class="results-display">Displaying results <b>1 - 25</b> of <b>%s</b></div>
	  <ul class="results">%s</ul>
	</div>
	</body></html>`, total, rows.String())
}

const recentIssueHTML = `<html><body>
<ul id="nav-article">
  <li><a href="/xpl/RecentIssue.jsp?punumber=6287639">Current Issue</a></li>
  <li><a href="/xpl/issues?punumber=6287639">All Issues</a></li>
  <li><a href="/xpl/tocresult.jsp?isnumber=6514899&punumber=6287639">Early Access</a></li>
</ul>
</body></html>`
