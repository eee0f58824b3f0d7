// Package qaurl builds the URLs of the site and holds the regexes that the
// router matches them with. Every Build function has a Regex that matches it.
package qaurl

import (
	"net/url"
	"strings"

	"git.campusqa.org/campusqa/campusqa/src/config"
)

var baseUrl = strings.TrimSuffix(config.Config.BaseUrl, "/")

func SetGlobalBaseUrl(u string) {
	baseUrl = strings.TrimSuffix(u, "/")
}

type Q struct {
	Name  string
	Value string
}

func Url(path string, query []Q) string {
	result := baseUrl + "/" + strings.TrimPrefix(path, "/")
	if q := encodeQuery(query); q != "" {
		result += "?" + q
	}
	return result
}

func encodeQuery(query []Q) string {
	result := url.Values{}
	for _, q := range query {
		result.Set(q.Name, q.Value)
	}
	return result.Encode()
}
