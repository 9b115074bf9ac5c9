package transcript

import (
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/lewisedginton/shopping_chat_client/pkg/utils"
)

const (
	// PlaceholderImage is shown when a product has no image.
	PlaceholderImage = "https://via.placeholder.com/150?text=No+Image"

	descriptionLimit = 70

	ansiBold  = "\x1b[1m"
	ansiDim   = "\x1b[2m"
	ansiReset = "\x1b[0m"
)

var boldPattern = regexp.MustCompile(`\*\*(.*?)\*\*`)

// FormatText applies the one supported markup: **x** becomes bold. Nothing else is escaped.
func FormatText(text string, color bool) string {
	if color {
		return boldPattern.ReplaceAllString(text, ansiBold+"$1"+ansiReset)
	}
	return boldPattern.ReplaceAllString(text, "$1")
}

// FormatPrice renders the card price line: "Price: $49.99", or "Price: $N/A" when the
// price is missing or zero.
func FormatPrice(price *float64) string {
	p := utils.ValueOr(price, 0)
	if p == 0 {
		return "Price: $N/A"
	}
	return fmt.Sprintf("Price: $%.2f", p)
}

// TruncateDescription keeps the first 70 characters and always appends "...".
func TruncateDescription(desc string) string {
	r := []rune(desc)
	if len(r) > descriptionLimit {
		r = r[:descriptionLimit]
	}
	return string(r) + "..."
}

// ImageURL returns the product image or the placeholder.
func ImageURL(url *string) string {
	if u := utils.ValueOr(url, ""); u != "" {
		return u
	}
	return PlaceholderImage
}

func avatar(s Sender) string {
	if s == SenderUser {
		return "👤"
	}
	return "🤖"
}

// Renderer writes entries to a terminal.
type Renderer struct {
	w     io.Writer
	color bool
}

// NewRenderer creates a renderer. color enables ANSI styling.
func NewRenderer(w io.Writer, color bool) *Renderer {
	return &Renderer{w: w, color: color}
}

func (r *Renderer) dim(s string) string {
	if !r.color {
		return s
	}
	return ansiDim + s + ansiReset
}

// FormatEntry returns the full text of an entry including its cards.
func (r *Renderer) FormatEntry(e Entry) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s %s\n", r.dim(e.Timestamp.Format("15:04")), avatar(e.Sender), FormatText(e.Text, r.color))
	for _, c := range e.Cards {
		p := c.Product
		fmt.Fprintf(&b, "    [%d] %s\n", c.Number, FormatText("**"+p.Name+"**", r.color))
		fmt.Fprintf(&b, "        %s\n", TruncateDescription(p.Description))
		fmt.Fprintf(&b, "        %s\n", FormatPrice(p.Price))
		fmt.Fprintf(&b, "        %s\n", r.dim(ImageURL(p.ImageURL)))
		fmt.Fprintf(&b, "        %s\n", r.dim(fmt.Sprintf("Add to Cart: /cart %d", c.Number)))
	}
	return b.String()
}

// Render writes one entry.
func (r *Renderer) Render(e Entry) {
	_, _ = io.WriteString(r.w, r.FormatEntry(e))
}

// Clear clears the screen when styling is on, otherwise prints a separator.
func (r *Renderer) Clear() {
	if r.color {
		_, _ = io.WriteString(r.w, "\x1b[H\x1b[2J")
		return
	}
	_, _ = io.WriteString(r.w, "----\n")
}
