package content

import (
	"strconv"

	"github.com/websitekoning/koning-api/services/site-service/internal/model"
)

// SeedPosts is written to an empty database and served when there is none.
func SeedPosts() []model.BlogPost {
	return []model.BlogPost{
		{
			Title:   "Conversiegerichte websites: wat werkt?",
			Excerpt: "Praktische tips voor meer leads.",
			Content: "...",
			Tags:    []string{"conversie", "mkb"},
			Author:  model.DefaultAuthor,
		},
		{
			Title:   "Snelheid = omzet",
			Excerpt: "Waarom laadtijd je ROI bepaalt.",
			Content: "...",
			Tags:    []string{"performance"},
			Author:  model.DefaultAuthor,
		},
	}
}

func SeedTestimonials() []model.Testimonial {
	return []model.Testimonial{
		{Author: "Bakkerij De Graaf", Role: "Lokale bakker", Quote: "Binnen 2 weken live en direct meer aanvragen.", Rating: 5},
		{Author: "FixIt Service", Role: "Loodgieter", Quote: "Heldere prijzen en snelle service. Aanrader!", Rating: 5},
	}
}

// fallbackPosts carries stable ids and no body.
func fallbackPosts() []model.BlogPost {
	posts := SeedPosts()
	out := make([]model.BlogPost, len(posts))
	for i, p := range posts {
		out[i] = model.BlogPost{ID: strconv.Itoa(i + 1), Title: p.Title, Excerpt: p.Excerpt}
	}
	return out
}
