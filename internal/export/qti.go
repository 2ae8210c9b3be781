package export

import (
	"archive/zip"
	"bytes"
	"fmt"
	"html"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"text/template"

	"github.com/google/uuid"

	"github.com/abhisek/rubrix/internal/question"
)

// LatexImageURL renders a LaTeX formula to SVG. Formulas are appended
// URL-encoded.
const LatexImageURL = "https://learn.lcps.org/svc/latex/latex-to-svg?latex="

var (
	codeBlockRe     = regexp.MustCompile("(?s)```[\\w+#-]*\\n(.*?)\\n?```")
	displayLatexRe  = regexp.MustCompile(`\$\$([^$]+)\$\$`)
	inlineLatexRe   = regexp.MustCompile(`\$([^$]+)\$`)
	inlineCodeRe    = regexp.MustCompile("`([^`]+)`")
	unsafeFilename  = regexp.MustCompile(`[^a-zA-Z0-9_-]`)
	manifestTmpl    = template.Must(template.New("manifest").Parse(manifestXML))
	questionBankTpl = template.Must(template.New("bank").Parse(questionBankXML))
)

type qtiChoice struct {
	ID   string
	HTML string
}

type qtiItem struct {
	ID        string
	HTML      string
	Choices   []qtiChoice
	CorrectID string
}

// QTIZip packages qs as an IMS Common Cartridge 1.2 zip holding a QTI 1.2
// question bank and its manifest. Every question must have a correct answer.
func QTIZip(title string, qs []question.Question) ([]byte, error) {
	items, err := qtiItems(qs)
	if err != nil {
		return nil, err
	}

	xmlName := Filename(title) + ".xml"

	var bank bytes.Buffer
	err = questionBankTpl.Execute(&bank, map[string]any{
		"BankID": uuid.NewString(),
		"Items":  items,
	})
	if err != nil {
		return nil, fmt.Errorf("render question bank: %w", err)
	}

	var manifest bytes.Buffer
	err = manifestTmpl.Execute(&manifest, map[string]string{
		"Title":   title,
		"XMLFile": xmlName,
	})
	if err != nil {
		return nil, fmt.Errorf("render manifest: %w", err)
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, f := range []struct {
		name string
		data []byte
	}{
		{xmlName, bank.Bytes()},
		{"imsmanifest.xml", manifest.Bytes()},
	} {
		w, err := zw.CreateHeader(&zip.FileHeader{Name: f.name, Method: zip.Deflate})
		if err != nil {
			return nil, fmt.Errorf("add %s: %w", f.name, err)
		}
		if _, err := w.Write(f.data); err != nil {
			return nil, fmt.Errorf("write %s: %w", f.name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("finalize zip: %w", err)
	}
	return buf.Bytes(), nil
}

func qtiItems(qs []question.Question) ([]qtiItem, error) {
	items := make([]qtiItem, len(qs))
	for i, q := range qs {
		correct := q.CorrectIndex()
		if correct < 0 {
			return nil, fmt.Errorf("question %d has no correct answer", i+1)
		}

		choices := make([]qtiChoice, len(q.Answers))
		for j, a := range q.Answers {
			choices[j] = qtiChoice{
				ID:   strconv.Itoa(j + 1),
				HTML: inlineCode(latex(a.Text)),
			}
		}
		items[i] = qtiItem{
			ID:        strconv.Itoa(i + 1),
			HTML:      cdataSafe(QuestionHTML(q.Text)),
			Choices:   choices,
			CorrectID: strconv.Itoa(correct + 1),
		}
	}
	return items, nil
}

// QuestionHTML converts question Markdown to the HTML subset LMS importers
// accept: fenced code becomes an escaped <pre> block, LaTeX becomes an
// image and backticks become <code>.
func QuestionHTML(text string) string {
	var b strings.Builder
	last := 0
	for _, m := range codeBlockRe.FindAllStringSubmatchIndex(text, -1) {
		if last < m[0] {
			b.WriteString(inlineCode(latex(text[last:m[0]])))
		}
		code := strings.TrimSpace(text[m[2]:m[3]])
		b.WriteString("<pre>" + html.EscapeString(code) + "</pre>")
		last = m[1]
	}
	if last < len(text) {
		b.WriteString(inlineCode(latex(text[last:])))
	}
	return b.String()
}

// cdataSafe splits any "]]>" so s can sit inside one CDATA section.
func cdataSafe(s string) string {
	return strings.ReplaceAll(s, "]]>", "]]]]><![CDATA[>")
}

// latex replaces $$display$$ and then $inline$ formulas with rendered
// images.
func latex(text string) string {
	text = displayLatexRe.ReplaceAllStringFunc(text, func(m string) string {
		return latexImage(displayLatexRe.FindStringSubmatch(m)[1])
	})
	return inlineLatexRe.ReplaceAllStringFunc(text, func(m string) string {
		return latexImage(inlineLatexRe.FindStringSubmatch(m)[1])
	})
}

func latexImage(formula string) string {
	formula = strings.TrimSpace(formula)
	attr := html.EscapeString(formula)
	return fmt.Sprintf(`<img src="%s%s" alt="%s" formula="%s" class="mathquill-formula" />`,
		LatexImageURL, encodeFormula(formula), attr, attr)
}

// encodeFormula percent-encodes everything except unreserved characters.
func encodeFormula(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

func inlineCode(text string) string {
	return inlineCodeRe.ReplaceAllString(text, "<code>$1</code>")
}

// Filename reduces title to a safe file name stem.
func Filename(title string) string {
	name := unsafeFilename.ReplaceAllString(strings.TrimSpace(title), "_")
	if name == "" {
		return "questions"
	}
	return name
}

const manifestXML = `<?xml version="1.0" encoding="UTF-8"?>
<manifest xmlns="http://www.imsglobal.org/xsd/imsccv1p2/imscp_v1p1" identifier="cctd0001"
    xmlns:lom="http://ltsc.ieee.org/xsd/imsccv1p2/LOM/resource"
    xmlns:lomimscc="http://ltsc.ieee.org/xsd/imsccv1p2/LOM/manifest"
    xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance">
    <metadata>
        <schema>IMS Common Cartridge</schema>
        <schemaversion>1.2.0</schemaversion>
        <lomimscc:lom>
            <lomimscc:general>
                <lomimscc:title>
                    <lomimscc:string>{{.Title | html}}</lomimscc:string>
                </lomimscc:title>
            </lomimscc:general>
        </lomimscc:lom>
    </metadata>
    <organizations>
        <organization identifier="org" structure="rooted-hierarchy">
            <item identifier="root">
                <item identifier="iden0000001" identifierref="ccres0000001">
                    <title>{{.Title | html}}</title>
                </item>
            </item>
        </organization>
    </organizations>
    <resources>
        <resource identifier="ccres0000001" type="imsqti_xmlv1p2/imscc_xmlv1p2/question-bank">
            <metadata />
            <file href="{{.XMLFile}}" />
        </resource>
    </resources>
</manifest>
`

const questionBankXML = `<?xml version="1.0" encoding="UTF-8"?>
<questestinterop xmlns="http://www.imsglobal.org/xsd/ims_qtiasiv1p2" xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance" xsi:schemaLocation="http://www.imsglobal.org/xsd/ims_qtiasiv1p2 http://www.imsglobal.org/profile/cc/ccv1p2/ccv1p2_qtiasiv1p2p1_v1p0.xsd">
    <objectbank ident="{{.BankID}}">
{{- range .Items}}
        <item ident="{{.ID}}">
            <itemmetadata>
                <qtimetadata>
                    <qtimetadatafield>
                        <fieldlabel>cc_profile</fieldlabel>
                        <fieldentry>cc.multiple_choice.v0p1</fieldentry>
                    </qtimetadatafield>
                </qtimetadata>
            </itemmetadata>
            <presentation>
                <material>
                    <mattext texttype="text/html"><![CDATA[{{.HTML}}]]></mattext>
                </material>
                <response_lid ident="{{.ID}}" rcardinality="Single">
                    <render_choice shuffle="Yes">
{{- range .Choices}}
                        <response_label ident="{{.ID}}">
                            <material>
                                <mattext texttype="text/html">{{.HTML | html}}</mattext>
                            </material>
                        </response_label>
{{- end}}
                    </render_choice>
                </response_lid>
            </presentation>
            <resprocessing>
                <outcomes>
                    <decvar maxvalue="100" minvalue="0" varname="SCORE" vartype="Decimal"/>
                </outcomes>
                <respcondition continue="No">
                    <conditionvar>
                        <varequal respident="{{.ID}}">{{.CorrectID}}</varequal>
                    </conditionvar>
                    <setvar action="Set" varname="SCORE">100</setvar>
                </respcondition>
            </resprocessing>
        </item>
{{- end}}
    </objectbank>
</questestinterop>
`
