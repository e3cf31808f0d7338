package dom

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const page = `<html><body>
<div id="msg-list"><div class="msg">one</div><div class="msg">two</div></div>
<input id="msg-txt" type="text">
<p id="styled" style="color: red; border: 1px solid #000">x</p>
</body></html>`

func newDoc(t *testing.T) *Document {
	t.Helper()
	d, err := ParseString(page)
	require.NoError(t, err)
	return d
}

func TestQueryReturnsFirstMatch(t *testing.T) {
	d := newDoc(t)

	el := d.Query(".msg")
	require.NotNil(t, el)
	assert.Equal(t, "one", el.Text())
}

func TestQueryMissingAndInvalid(t *testing.T) {
	d := newDoc(t)

	assert.Nil(t, d.Query("#nope"))
	assert.Nil(t, d.Query(""))
	assert.Nil(t, d.Query("div[["))
	assert.False(t, d.Exists("#nope"))
	assert.True(t, d.Exists("#msg-list"))
}

func TestAppendChildNotifiesObservers(t *testing.T) {
	d := newDoc(t)
	var got []Mutation
	d.Observe(func(m Mutation) { got = append(got, m) })

	list := d.Query("#msg-list")
	child, err := d.CreateElement("span")
	require.NoError(t, err)
	child.SetText("three")
	list.AppendChild(child)

	require.Len(t, list.Children(), 3)
	last := got[len(got)-1]
	assert.Equal(t, MutationAppend, last.Kind)
	assert.True(t, last.Added.Is(child))
	assert.Equal(t, "three", list.Children()[2].Text())
}

func TestHTMLRoundTrip(t *testing.T) {
	d := newDoc(t)
	el := d.Query("#msg-list")

	el.SetHTML("<b>bold</b>")
	got, err := el.HTML()
	require.NoError(t, err)
	assert.Equal(t, "<b>bold</b>", got)

	el.AppendHTML("<i>it</i>")
	got, err = el.HTML()
	require.NoError(t, err)
	assert.Equal(t, "<b>bold</b><i>it</i>", got)
}

func TestAttributes(t *testing.T) {
	d := newDoc(t)
	el := d.Query("#msg-txt")

	v, ok := el.Attr("type")
	assert.True(t, ok)
	assert.Equal(t, "text", v)

	el.SetAttr("type", "password")
	v, _ = el.Attr("type")
	assert.Equal(t, "password", v)

	el.RemoveAttr("type")
	_, ok = el.Attr("type")
	assert.False(t, ok)
}

func TestStyle(t *testing.T) {
	d := newDoc(t)
	el := d.Query("#styled")

	assert.Equal(t, "red", el.Style("color"))
	assert.Equal(t, "1px solid #000", el.Style("border"))
	assert.Empty(t, el.Style("background"))

	require.NoError(t, el.SetStyle("color", "blue"))
	require.NoError(t, el.SetStyle("background-color", "#fff"))
	assert.Equal(t, "blue", el.Style("color"))
	assert.Equal(t, "#fff", el.Style("background-color"))
	assert.Equal(t, "1px solid #000", el.Style("border"))

	require.NoError(t, el.SetStyle("color", ""))
	assert.Empty(t, el.Style("color"))
	assert.Equal(t, "1px solid #000", el.Style("border"))
}

func TestSetStyleRejectsExtraDeclarations(t *testing.T) {
	d := newDoc(t)
	el := d.Query("#styled")
	before, _ := el.Attr("style")

	for _, v := range []string{
		"red; position: fixed; display: none",
		"red; color: blue",
		"red } p { color: blue",
	} {
		assert.ErrorIs(t, el.SetStyle("color", v), ErrInvalidStyle, v)
	}
	assert.ErrorIs(t, el.SetStyle("", "red"), ErrInvalidStyle)

	after, _ := el.Attr("style")
	assert.Equal(t, before, after)
	assert.Empty(t, el.Style("position"))
	assert.Empty(t, el.Style("display"))
}

func TestCreateElementValidatesTag(t *testing.T) {
	d := newDoc(t)

	el, err := d.CreateElement("")
	require.NoError(t, err)
	assert.Equal(t, "div", el.Tag())

	el, err = d.CreateElement("H2")
	require.NoError(t, err)
	assert.Equal(t, "h2", el.Tag())

	for _, tag := range []string{"img src=x onerror=alert(1)", "1div", "a>b", "x/y"} {
		_, err := d.CreateElement(tag)
		assert.ErrorIs(t, err, ErrInvalidName, tag)
	}
}

func TestSetAttrValidatesName(t *testing.T) {
	d := newDoc(t)
	el := d.Query("#msg-txt")

	for _, name := range []string{`title="a" onmouseover`, "a b", "x=y", "a>", "", "a/b", "a'b"} {
		assert.ErrorIs(t, el.SetAttr(name, "v"), ErrInvalidName, name)
	}
	require.NoError(t, el.SetAttr("data-x", "1"))

	out, err := d.Render()
	require.NoError(t, err)
	assert.NotContains(t, out, "onmouseover")
	assert.Contains(t, out, `data-x="1"`)
}

func TestFocusAndBlur(t *testing.T) {
	d := newDoc(t)
	input := d.Query("#msg-txt")
	list := d.Query("#msg-list")

	input.Focus()
	assert.True(t, input.Is(d.Active()))

	list.Blur()
	assert.True(t, input.Is(d.Active()), "blur on another element keeps focus")

	input.Blur()
	assert.Nil(t, d.Active())
}

func TestScrollToBottom(t *testing.T) {
	d := newDoc(t)
	list := d.Query("#msg-list")

	assert.Equal(t, 0, list.ScrollTop())
	list.ScrollToBottom()
	assert.Equal(t, 2, list.ScrollTop())
}

func TestEditable(t *testing.T) {
	d := newDoc(t)
	el := d.Query("#msg-list")

	el.SetEditable(true)
	assert.True(t, el.Editable())
	el.SetEditable(false)
	assert.False(t, el.Editable())
}

func TestClickCallbacks(t *testing.T) {
	d := newDoc(t)
	el := d.Query("#styled")

	assert.False(t, el.BindClick("launchMissiles"))
	assert.False(t, d.Click(el))

	require.True(t, el.BindClick("removeDecoration"))
	assert.True(t, d.Click(el))
	assert.Equal(t, "none", el.Style("text-decoration"))
}

func TestRender(t *testing.T) {
	d := newDoc(t)
	out, err := d.Render()
	require.NoError(t, err)
	assert.Contains(t, out, `id="msg-list"`)
}
