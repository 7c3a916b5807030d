package render

import "html/template"

// 块标记模板，形状固定且带版本含义：改动即改变对外 HTML 契约
var (
	heroTemplate = mustParse("hero", `{{if .Image}}<img class="pw-hero__image" src="{{.Image.URL}}"{{if .Image.ID}} data-gen-image="{{.Image.ID}}"{{end}} alt="{{.Image.Alt}}"/>{{end}}<h1 class="pw-hero__title">{{.Title}}</h1>{{if .Subtitle}}<p class="pw-hero__subtitle">{{.Subtitle}}</p>{{end}}{{if .CTALabel}}<a class="pw-btn pw-hero__cta" href="{{.CTAHref}}">{{.CTALabel}}</a>{{end}}`)

	cardsTemplate = mustParse("cards", `{{if .Heading}}<h2 class="pw-cards__heading">{{.Heading}}</h2>{{end}}<ul class="pw-cards">{{range .Cards}}<li class="pw-card">{{if .Image}}<img class="pw-card__image" src="{{.Image.URL}}"{{if .Image.ID}} data-gen-image="{{.Image.ID}}"{{end}} alt="{{.Image.Alt}}"/>{{end}}<h3 class="pw-card__title">{{.Title}}</h3>{{if .Body}}<p class="pw-card__body">{{.Body}}</p>{{end}}{{if .Href}}<a class="pw-card__link" href="{{.Href}}">Learn more</a>{{end}}</li>{{end}}</ul>`)

	productCardsTemplate = mustParse("product-cards", `{{if .Heading}}<h2 class="pw-products__heading">{{.Heading}}</h2>{{end}}<ul class="pw-products">{{range .Products}}<li class="pw-product">{{if .Image}}<img class="pw-product__image" src="{{.Image.URL}}"{{if .Image.ID}} data-gen-image="{{.Image.ID}}"{{end}} alt="{{.Image.Alt}}"/>{{end}}<h3 class="pw-product__name">{{.Name}}</h3>{{if .Tagline}}<p class="pw-product__tagline">{{.Tagline}}</p>{{end}}{{if .Price}}<span class="pw-product__price">{{.Price}}</span>{{end}}{{if .Features}}<ul class="pw-product__features">{{range .Features}}<li>{{.}}</li>{{end}}</ul>{{end}}</li>{{end}}</ul>`)

	comparisonTableTemplate = mustParse("comparison-table", `{{if .Heading}}<h2 class="pw-compare__heading">{{.Heading}}</h2>{{end}}<table class="pw-compare"><thead><tr>{{range .Columns}}<th>{{.}}</th>{{end}}</tr></thead><tbody>{{range .Rows}}<tr>{{range .}}<td>{{.}}</td>{{end}}</tr>{{end}}</tbody></table>{{if .FootNote}}<p class="pw-compare__footnote">{{.FootNote}}</p>{{end}}`)

	columnsTemplate = mustParse("columns", `{{if .Heading}}<h2 class="pw-columns__heading">{{.Heading}}</h2>{{end}}<div class="pw-columns">{{range .Columns}}<div class="pw-column">{{if .Image}}<img class="pw-column__image" src="{{.Image.URL}}"{{if .Image.ID}} data-gen-image="{{.Image.ID}}"{{end}} alt="{{.Image.Alt}}"/>{{end}}{{if .Heading}}<h3 class="pw-column__heading">{{.Heading}}</h3>{{end}}<p class="pw-column__body">{{.Body}}</p></div>{{end}}</div>`)

	splitContentTemplate = mustParse("split-content", `<div class="pw-split pw-split--image-{{.Side}}">{{if .Image}}<img class="pw-split__image" src="{{.Image.URL}}"{{if .Image.ID}} data-gen-image="{{.Image.ID}}"{{end}} alt="{{.Image.Alt}}"/>{{end}}<div class="pw-split__copy"><h2 class="pw-split__heading">{{.Heading}}</h2><p class="pw-split__body">{{.Body}}</p></div></div>`)

	recipeDetailTemplate = mustParse("recipe-detail", `{{if .Image}}<img class="pw-recipe__image" src="{{.Image.URL}}"{{if .Image.ID}} data-gen-image="{{.Image.ID}}"{{end}} alt="{{.Image.Alt}}"/>{{end}}<h2 class="pw-recipe__name">{{.Name}}</h2>{{if .Description}}<p class="pw-recipe__description">{{.Description}}</p>{{end}}{{if .PrepTime}}<span class="pw-recipe__prep-time">{{.PrepTime}}</span>{{end}}<ul class="pw-recipe__ingredients">{{range .Ingredients}}<li>{{if .Quantity}}{{.Quantity}} {{end}}{{.Name}}</li>{{end}}</ul><ol class="pw-recipe__steps">{{range .Steps}}<li>{{.}}</li>{{end}}</ol>`)

	recipeCardsTemplate = mustParse("recipe-cards", `{{if .Heading}}<h2 class="pw-recipes__heading">{{.Heading}}</h2>{{end}}<ul class="pw-recipes">{{range .Recipes}}<li class="pw-recipe-card">{{if .Image}}<img class="pw-recipe-card__image" src="{{.Image.URL}}"{{if .Image.ID}} data-gen-image="{{.Image.ID}}"{{end}} alt="{{.Image.Alt}}"/>{{end}}<h3 class="pw-recipe-card__name">{{.Name}}</h3>{{if .Description}}<p class="pw-recipe-card__description">{{.Description}}</p>{{end}}{{if .PrepTime}}<span class="pw-recipe-card__prep-time">{{.PrepTime}}</span>{{end}}</li>{{end}}</ul>`)

	techniqueTemplate = mustParse("technique", `<h2 class="pw-technique__title">{{.Title}}</h2>{{if .Body}}<p class="pw-technique__body">{{.Body}}</p>{{end}}{{if .VideoURL}}<video class="pw-technique__video" controls src="{{.VideoURL}}"></video>{{else if .Image}}<img class="pw-technique__image" src="{{.Image.URL}}"{{if .Image.ID}} data-gen-image="{{.Image.ID}}"{{end}} alt="{{.Image.Alt}}"/>{{end}}`)

	faqTemplate = mustParse("faq", `{{if .Heading}}<h2 class="pw-faq__heading">{{.Heading}}</h2>{{end}}<dl class="pw-faq">{{range .Items}}<dt class="pw-faq__question">{{.Question}}</dt><dd class="pw-faq__answer">{{.Answer}}</dd>{{end}}</dl>`)

	ctaTemplate = mustParse("cta", `<h2 class="pw-cta__heading">{{.Heading}}</h2>{{if .Body}}<p class="pw-cta__body">{{.Body}}</p>{{end}}<a class="pw-btn pw-cta__button" href="{{.Href}}">{{.Label}}</a>`)

	textTemplate = mustParse("text", `{{if .Heading}}<h2 class="pw-text__heading">{{.Heading}}</h2>{{end}}<div class="pw-text__body">{{.Body}}</div>`)
)

func mustParse(name, text string) *template.Template {
	return template.Must(template.New(name).Parse(text))
}
