package model

const DefaultAuthor = "Website Koning"

type BlogPost struct {
	ID      string
	Title   string
	Excerpt string
	Content string
	Tags    []string
	Author  string
}

type Testimonial struct {
	ID     string
	Author string
	Role   string
	Quote  string
	Rating int
}
