package wall

import (
	"bytes"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/phpdave11/gofpdf"
	"github.com/skip2/go-qrcode"

	"mywall/utils"
)

func publicBaseURL() string {
	if base := os.Getenv("PUBLIC_BASE_URL"); base != "" {
		return base
	}
	return "http://localhost:8080"
}

func postPermalink(postID string) string {
	return fmt.Sprintf("%s/wall/posts/%s", publicBaseURL(), postID)
}

// ShareQR returns a PNG QR code pointing at the post's permalink.
func (h *Handlers) ShareQR(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	userID, ok := requestUser(r)
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	post, err := h.ownedPost(r.Context(), ps.ByName("postid"), userID)
	if err != nil {
		utils.RespondWithError(w, http.StatusNotFound, "Post not found")
		return
	}

	qrPNG, err := qrcode.Encode(postPermalink(post.PostID), qrcode.Medium, 256)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to generate QR code")
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	w.Write(qrPNG)
}

// PrintCard renders a post as a small PDF card with its permalink QR code.
func (h *Handlers) PrintCard(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	userID, ok := requestUser(r)
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	post, err := h.ownedPost(r.Context(), ps.ByName("postid"), userID)
	if err != nil {
		utils.RespondWithError(w, http.StatusNotFound, "Post not found")
		return
	}

	qrPNG, err := qrcode.Encode(postPermalink(post.PostID), qrcode.Medium, 256)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to generate QR code")
		return
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(40, 10, "Wall Post")
	pdf.Ln(12)

	pdf.SetFont("Arial", "", 12)
	posted := time.UnixMilli(post.CreatedAt).Format("Jan 2, 2006 15:04")
	pdf.Cell(0, 10, fmt.Sprintf("Posted: %s", posted))
	pdf.Ln(8)
	if post.Content != "" {
		pdf.MultiCell(130, 8, post.Content, "", "L", false)
		pdf.Ln(4)
	}
	if len(post.MediaFiles) > 0 {
		pdf.Cell(0, 10, fmt.Sprintf("Attachments: %d (%s)", len(post.MediaFiles), post.MediaType))
		pdf.Ln(8)
	}

	imageOpts := gofpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader("qr", imageOpts, bytes.NewReader(qrPNG))
	pdf.ImageOptions("qr", 150, 40, 40, 40, false, imageOpts, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to generate PDF")
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", "attachment; filename=post-"+post.PostID+".pdf")
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}
