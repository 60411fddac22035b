package xmlwriter

import (
	"encoding/xml"
	"strings"
	"testing"

	"github.com/ginjaninja78/paxml-exporter/internal/types"
)

func TestSerializeFullDocument(t *testing.T) {
	transactions := []types.Transaction{{
		Sequence:       1,
		EmployeeID:     "E001",
		PersonalNumber: "198505121234",
		Date:           "2024-05-10",
		TimeCode:       "SJK",
		Hours:          8,
		Comment:        "comment",
	}}
	schedules := []types.ScheduleTransaction{{
		EmployeeID:     "E001",
		PersonalNumber: "198505121234",
		Days: []types.ScheduleDay{
			{Date: "2024-05-10", StartTime: "08:00", EndTime: "16:30", Hours: 8},
		},
	}}

	want := `<?xml version="1.0" encoding="utf-8"?>
<paxml xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance" xsi:noNamespaceSchemaLocation="http://www.paxml.se/2.2/paxml.xsd">
  <header>
    <format>LÖNIN</format>
    <version>2.2</version>
  </header>
  <tidtransaktioner>
    <tidtrans anstid="E001" persnr="198505121234" postid="1">
      <tidkod>SJK</tidkod>
      <datum>2024-05-10</datum>
      <timmar>8.00</timmar>
      <info>comment</info>
    </tidtrans>
  </tidtransaktioner>
  <schematransaktioner>
    <schema anstid="E001" persnr="198505121234">
      <dag datum="2024-05-10" starttid="08:00" sluttid="16:30" timmar="8.00" />
    </schema>
  </schematransaktioner>
</paxml>
`
	if got := Serialize(transactions, schedules); got != want {
		t.Fatalf("unexpected document:\n%s\nwant:\n%s", got, want)
	}
}

func TestSerializeEmptyOmitsSections(t *testing.T) {
	want := `<?xml version="1.0" encoding="utf-8"?>
<paxml xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance" xsi:noNamespaceSchemaLocation="http://www.paxml.se/2.2/paxml.xsd">
  <header>
    <format>LÖNIN</format>
    <version>2.2</version>
  </header>
</paxml>
`
	got := Serialize(nil, nil)
	if got != want {
		t.Fatalf("unexpected document:\n%s", got)
	}

	var doc struct {
		XMLName xml.Name `xml:"paxml"`
	}
	if err := xml.Unmarshal([]byte(got), &doc); err != nil {
		t.Fatalf("empty document is not well-formed: %v", err)
	}
}

func TestSerializeOmitsInfoAndTimes(t *testing.T) {
	got := Serialize(
		[]types.Transaction{{Sequence: 3, EmployeeID: "E002", PersonalNumber: "199001011234", Date: "2024-05-11", TimeCode: "VAB", Hours: 4.5}},
		[]types.ScheduleTransaction{{EmployeeID: "E002", PersonalNumber: "199001011234", Days: []types.ScheduleDay{{Date: "2024-05-11", Hours: 0}}}},
	)

	if strings.Contains(got, "<info>") {
		t.Fatalf("expected no info element:\n%s", got)
	}
	if !strings.Contains(got, `postid="3"`) || !strings.Contains(got, "<timmar>4.50</timmar>") {
		t.Fatalf("unexpected transaction rendering:\n%s", got)
	}
	if !strings.Contains(got, `<dag datum="2024-05-11" timmar="0.00" />`) {
		t.Fatalf("expected dag without times:\n%s", got)
	}
}

func TestSerializeEscapesOnce(t *testing.T) {
	comment := `Tom & Jerry's <"cartoon"> &amp;`
	got := Serialize([]types.Transaction{{
		Sequence:       1,
		EmployeeID:     `E<1>`,
		PersonalNumber: "198505121234",
		Date:           "2024-05-10",
		TimeCode:       "SJK",
		Hours:          1,
		Comment:        comment,
	}}, nil)

	if !strings.Contains(got, `<info>Tom &amp; Jerry&apos;s &lt;&quot;cartoon&quot;&gt; &amp;amp;</info>`) {
		t.Fatalf("unexpected escaping:\n%s", got)
	}
	if !strings.Contains(got, `anstid="E&lt;1&gt;"`) {
		t.Fatalf("expected escaped attribute:\n%s", got)
	}

	// The external parser must get back exactly what was written.
	var doc struct {
		Transactions []struct {
			EmployeeID string `xml:"anstid,attr"`
			Info       string `xml:"info"`
		} `xml:"tidtransaktioner>tidtrans"`
	}
	if err := xml.Unmarshal([]byte(got), &doc); err != nil {
		t.Fatalf("document is not well-formed: %v", err)
	}
	if len(doc.Transactions) != 1 || doc.Transactions[0].Info != comment || doc.Transactions[0].EmployeeID != "E<1>" {
		t.Fatalf("round trip changed values: %+v", doc.Transactions)
	}
}

func TestSerializeKeepsWhitespace(t *testing.T) {
	got := Serialize([]types.Transaction{{
		Sequence: 1, EmployeeID: "E001", PersonalNumber: "198505121234",
		Date: "2024-05-10", TimeCode: "SJK", Hours: 1, Comment: "  two  spaces ",
	}}, nil)
	if !strings.Contains(got, "<info>  two  spaces </info>") {
		t.Fatalf("comment must not be normalised:\n%s", got)
	}
}

func TestLegalTextMatchesParser(t *testing.T) {
	cases := []struct {
		name    string
		comment string
		legal   bool
	}{
		{"plain", "sjuk hemma", true},
		{"line breaks", "rad ett\r\nrad två\tslut", true},
		{"replacement character", "caf\uFFFD", true},
		{"control characters", "sjuk\x01\x0bhemma", false},
		{"nul", "a\x00b", false},
		{"invalid utf-8", "caf\xe9", false},
		{"non-character", "a\uFFFEb", false},
	}
	for _, tt := range cases {
		if _, ok := LegalText(tt.comment); ok != tt.legal {
			t.Fatalf("%s: LegalText=%v, want %v", tt.name, ok, tt.legal)
		}

		got := Serialize([]types.Transaction{{
			Sequence: 1, EmployeeID: "E001", PersonalNumber: "198505121234",
			Date: "2024-05-10", TimeCode: "SJK", Hours: 1, Comment: tt.comment,
		}}, nil)
		var doc struct {
			Info string `xml:"tidtransaktioner>tidtrans>info"`
		}
		err := xml.Unmarshal([]byte(got), &doc)
		if tt.legal && (err != nil || doc.Info != tt.comment) {
			t.Fatalf("%s: legal comment did not round trip: err=%v info=%q", tt.name, err, doc.Info)
		}
		if !tt.legal && err == nil && doc.Info == tt.comment {
			t.Fatalf("%s: illegal comment survived the parser unchanged", tt.name)
		}
	}
}

func TestSerializeAttributesKeepWhitespace(t *testing.T) {
	got := Serialize([]types.Transaction{{
		Sequence: 1, EmployeeID: "E\t0\n1", PersonalNumber: "198505121234",
		Date: "2024-05-10", TimeCode: "SJK", Hours: 1,
	}}, nil)
	if !strings.Contains(got, `anstid="E&#x9;0&#xA;1"`) {
		t.Fatalf("expected whitespace character references:\n%s", got)
	}
}

func TestFormatHours(t *testing.T) {
	cases := map[float64]string{
		8:     "8.00",
		7.5:   "7.50",
		0.25:  "0.25",
		1.005: "1.00",
		0:     "0.00",
	}
	for in, want := range cases {
		if got := FormatHours(in); got != want {
			t.Fatalf("FormatHours(%v)=%q, want %q", in, got, want)
		}
	}
}
