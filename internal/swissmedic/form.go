package swissmedic

import (
	"fmt"
	"io"
	"net/url"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

const (
	fieldViewState          = "__VIEWSTATE"
	fieldViewStateGenerator = "__VIEWSTATEGENERATOR"
	fieldEventValidation    = "__EVENTVALIDATION"

	// consentField is the "Ja" button of the download disclaimer.
	consentField = "ctl00$MainContent$BtnYes"
	consentValue = "Ja"
)

var hiddenFields = []string{
	fieldViewState,
	fieldViewStateGenerator,
	fieldEventValidation,
}

// parseHiddenFields reads the consent page and returns the value of every
// required hidden input. A missing input, or one without a value attribute,
// is a protocol error.
func parseHiddenFields(r io.Reader) (map[string]string, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to parse consent page: %w", ErrProtocol, err)
	}
	doc := goquery.NewDocumentFromNode(root)

	fields := make(map[string]string, len(hiddenFields))
	for _, name := range hiddenFields {
		value, ok := doc.Find(fmt.Sprintf(`input[name=%q]`, name)).First().Attr("value")
		if !ok {
			return nil, fmt.Errorf("%w: could not locate required field %s", ErrProtocol, name)
		}
		fields[name] = value
	}
	return fields, nil
}

// consentForm echoes the hidden fields and adds the consent button.
func consentForm(fields map[string]string) url.Values {
	form := url.Values{}
	for _, name := range hiddenFields {
		form.Set(name, fields[name])
	}
	form.Set(consentField, consentValue)
	return form
}
