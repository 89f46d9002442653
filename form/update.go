package form

import (
	"bytes"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// Errors returned by Apply.
var (
	ErrMalformed    = errors.New("form: malformed PDF")
	ErrHasAcroForm  = errors.New("form: document already has an AcroForm")
	ErrPageNotFound = errors.New("form: page not found")
	ErrDuplicate    = errors.New("form: duplicate field name")
)

var (
	reStartXref = regexp.MustCompile(`startxref\s+(\d+)\s+%%EOF\s*$`)
	reRef       = regexp.MustCompile(`(\d+) 0 R`)
	reSize      = regexp.MustCompile(`/Size (\d+)`)
	reRoot      = regexp.MustCompile(`/Root (\d+) 0 R`)
	reInfo      = regexp.MustCompile(`/Info (\d+) 0 R`)
	rePages     = regexp.MustCompile(`/Pages (\d+) 0 R`)
	reKids      = regexp.MustCompile(`/Kids \[([^\]]*)\]`)
)

// Apply returns pdf with the builder's fields appended as an incremental
// update. With no fields pdf is returned unchanged.
func (b *Builder) Apply(pdf []byte) ([]byte, error) {
	if len(b.fields) == 0 {
		return pdf, nil
	}
	seen := make(map[string]bool, len(b.fields))
	for _, f := range b.fields {
		if seen[f.Name] {
			return nil, fmt.Errorf("%w: %q", ErrDuplicate, f.Name)
		}
		seen[f.Name] = true
	}

	tr, err := readTrailer(pdf)
	if err != nil {
		return nil, err
	}
	catalog, err := objectBody(pdf, tr.root)
	if err != nil {
		return nil, err
	}
	if strings.Contains(catalog, "/AcroForm") {
		return nil, ErrHasAcroForm
	}
	pages, err := pageRefs(pdf, catalog)
	if err != nil {
		return nil, err
	}

	// Assign widget object numbers and group them by page.
	next := tr.size
	annots := make(map[int][]int)
	var fieldRefs []string
	objs := make(map[int]string)
	for _, f := range b.fields {
		if f.Page < 1 || f.Page > len(pages) {
			return nil, fmt.Errorf("%w: field %q on page %d of %d", ErrPageNotFound, f.Name, f.Page, len(pages))
		}
		page := pages[f.Page-1]
		objs[next] = widgetDict(f, page)
		annots[page] = append(annots[page], next)
		fieldRefs = append(fieldRefs, fmt.Sprintf("%d 0 R", next))
		next++
	}

	for page, refs := range annots {
		body, err := objectBody(pdf, page)
		if err != nil {
			return nil, err
		}
		objs[page] = withAnnots(body, refs)
	}
	acroForm := fmt.Sprintf("/AcroForm <</Fields [%s] /DR <</Font <</Helv <</Type /Font /Subtype /Type1 /BaseFont /Helvetica>>>>>> /DA (/Helv 0 Tf 0 g) /NeedAppearances true>>",
		strings.Join(fieldRefs, " "))
	objs[tr.root] = insertBeforeClose(catalog, acroForm)

	return appendUpdate(pdf, objs, tr, next), nil
}

type trailer struct {
	size, root, info int
	prev             int
}

func readTrailer(pdf []byte) (trailer, error) {
	var tr trailer
	m := reStartXref.FindSubmatch(pdf)
	if m == nil {
		return tr, fmt.Errorf("%w: no startxref", ErrMalformed)
	}
	tr.prev, _ = strconv.Atoi(string(m[1]))

	i := bytes.LastIndex(pdf, []byte("trailer"))
	if i < 0 {
		return tr, fmt.Errorf("%w: no trailer (cross-reference streams are not supported)", ErrMalformed)
	}
	dict := pdf[i:]
	size := reSize.FindSubmatch(dict)
	root := reRoot.FindSubmatch(dict)
	if size == nil || root == nil {
		return tr, fmt.Errorf("%w: incomplete trailer", ErrMalformed)
	}
	tr.size, _ = strconv.Atoi(string(size[1]))
	tr.root, _ = strconv.Atoi(string(root[1]))
	if info := reInfo.FindSubmatch(dict); info != nil {
		tr.info, _ = strconv.Atoi(string(info[1]))
	}
	return tr, nil
}

// objectBody returns the last definition of object num, without the
// obj/endobj keywords.
func objectBody(pdf []byte, num int) (string, error) {
	head := []byte(fmt.Sprintf("\n%d 0 obj", num))
	i := bytes.LastIndex(pdf, head)
	if i < 0 {
		return "", fmt.Errorf("%w: object %d not found", ErrMalformed, num)
	}
	rest := pdf[i+len(head):]
	j := bytes.Index(rest, []byte("endobj"))
	if j < 0 {
		return "", fmt.Errorf("%w: object %d not terminated", ErrMalformed, num)
	}
	body := strings.TrimSpace(string(rest[:j]))
	if !strings.HasPrefix(body, "<<") || !strings.HasSuffix(body, ">>") {
		return "", fmt.Errorf("%w: object %d is not a dictionary", ErrMalformed, num)
	}
	return body, nil
}

// pageRefs returns the page object numbers in page order. Only a flat page
// tree is supported, which is what single-writer output uses.
func pageRefs(pdf []byte, catalog string) ([]int, error) {
	m := rePages.FindStringSubmatch(catalog)
	if m == nil {
		return nil, fmt.Errorf("%w: catalog has no /Pages", ErrMalformed)
	}
	n, _ := strconv.Atoi(m[1])
	tree, err := objectBody(pdf, n)
	if err != nil {
		return nil, err
	}
	kids := reKids.FindStringSubmatch(tree)
	if kids == nil {
		return nil, fmt.Errorf("%w: page tree has no /Kids", ErrMalformed)
	}
	var pages []int
	for _, ref := range reRef.FindAllStringSubmatch(kids[1], -1) {
		p, _ := strconv.Atoi(ref[1])
		pages = append(pages, p)
	}
	if len(pages) == 0 {
		return nil, fmt.Errorf("%w: empty page tree", ErrPageNotFound)
	}
	return pages, nil
}

func withAnnots(page string, refs []int) string {
	parts := make([]string, len(refs))
	for i, r := range refs {
		parts[i] = fmt.Sprintf("%d 0 R", r)
	}
	list := strings.Join(parts, " ")
	if i := strings.Index(page, "/Annots ["); i >= 0 {
		at := i + len("/Annots [")
		return page[:at] + list + " " + page[at:]
	}
	return insertBeforeClose(page, "/Annots ["+list+"]")
}

func insertBeforeClose(dict, entry string) string {
	body := strings.TrimSuffix(dict, ">>")
	if !strings.HasSuffix(body, "\n") {
		body += "\n"
	}
	return body + entry + "\n>>"
}

// appendUpdate writes objs after pdf followed by a cross-reference section
// and a trailer chained to the previous one via /Prev.
func appendUpdate(pdf []byte, objs map[int]string, tr trailer, size int) []byte {
	var buf bytes.Buffer
	buf.Write(pdf)
	if !bytes.HasSuffix(pdf, []byte("\n")) {
		buf.WriteByte('\n')
	}

	nums := make([]int, 0, len(objs))
	for n := range objs {
		nums = append(nums, n)
	}
	sort.Ints(nums)
	offsets := make(map[int]int, len(nums))
	for _, n := range nums {
		offsets[n] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", n, objs[n])
	}

	xref := buf.Len()
	buf.WriteString("xref\n")
	for start := 0; start < len(nums); {
		end := start + 1
		for end < len(nums) && nums[end] == nums[end-1]+1 {
			end++
		}
		fmt.Fprintf(&buf, "%d %d\n", nums[start], end-start)
		for _, n := range nums[start:end] {
			fmt.Fprintf(&buf, "%010d 00000 n \n", offsets[n])
		}
		start = end
	}
	buf.WriteString("trailer\n<<\n")
	fmt.Fprintf(&buf, "/Size %d\n/Root %d 0 R\n", size, tr.root)
	if tr.info > 0 {
		fmt.Fprintf(&buf, "/Info %d 0 R\n", tr.info)
	}
	fmt.Fprintf(&buf, "/Prev %d\n>>\nstartxref\n%d\n%%%%EOF\n", tr.prev, xref)
	return buf.Bytes()
}
