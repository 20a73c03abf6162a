package catalog

// Catalog is the storefront content: plans, the coffee of the month,
// testimonials, FAQ and contact details.
type Catalog struct {
	Version       int           `yaml:"version" json:"version"`
	Plans         []Plan        `yaml:"plans" json:"plans"`
	MonthlyCoffee Coffee        `yaml:"monthly_coffee" json:"monthly_coffee"`
	Beans         []Bean        `yaml:"beans" json:"beans"`
	Testimonials  []Testimonial `yaml:"testimonials" json:"testimonials"`
	FAQ           []FAQEntry    `yaml:"faq" json:"faq"`
	Commitments   []Commitment  `yaml:"commitments" json:"commitments"`
	Contact       ContactInfo   `yaml:"contact" json:"contact"`
}

// Plan is a subscription plan.
type Plan struct {
	ID              string   `yaml:"id" json:"id"`
	Name            string   `yaml:"name" json:"name"`
	Description     string   `yaml:"description" json:"description"`
	WeightGrams     int      `yaml:"weight_grams" json:"weight_grams"`
	Varieties       int      `yaml:"varieties" json:"varieties"`
	OriginalPrice   int      `yaml:"original_price" json:"original_price"`       // Yen per month
	FirstMonthPrice int      `yaml:"first_month_price" json:"first_month_price"` // Yen, introductory
	TargetUser      string   `yaml:"target_user" json:"target_user"`
	Features        []string `yaml:"features" json:"features"`
	Popular         bool     `yaml:"popular,omitempty" json:"popular,omitempty"`
}

// DiscountPercent returns the first-month discount, rounded down.
func (p Plan) DiscountPercent() int {
	if p.OriginalPrice <= 0 {
		return 0
	}
	return (p.OriginalPrice - p.FirstMonthPrice) * 100 / p.OriginalPrice
}

// Coffee describes the featured coffee of the month.
type Coffee struct {
	Origin    string   `yaml:"origin" json:"origin"`
	Farm      string   `yaml:"farm" json:"farm"`
	Altitude  string   `yaml:"altitude" json:"altitude"`
	Process   string   `yaml:"process" json:"process"`
	Score     int      `yaml:"score" json:"score"` // Cupping score
	Flavors   []Flavor `yaml:"flavors" json:"flavors"`
	Story     []string `yaml:"story" json:"story"` // Producer story paragraphs
	NextMonth Preview  `yaml:"next_month" json:"next_month"`
}

// Flavor is one note of a flavour profile.
type Flavor struct {
	Name      string `yaml:"name" json:"name"`
	Intensity int    `yaml:"intensity" json:"intensity"` // 0-100
}

// Preview announces next month's coffee.
type Preview struct {
	Origin  string `yaml:"origin" json:"origin"`
	Preview string `yaml:"preview" json:"preview"`
}

// Bean is a coffee the taste diagnostic can recommend.
type Bean struct {
	ID          string `yaml:"id" json:"id"`
	Taste       string `yaml:"taste" json:"taste"` // Diagnostic taste answer this bean matches
	Name        string `yaml:"name" json:"name"`
	Description string `yaml:"description" json:"description"`
}

// Testimonial is a customer review shown in the carousel.
type Testimonial struct {
	ID      int    `yaml:"id" json:"id"`
	Name    string `yaml:"name" json:"name"`
	Plan    string `yaml:"plan" json:"plan"`
	Rating  int    `yaml:"rating" json:"rating"` // 1-5
	Comment string `yaml:"comment" json:"comment"`
	Period  string `yaml:"period" json:"period"`
}

// FAQEntry is one question of the FAQ accordion.
type FAQEntry struct {
	ID       int    `yaml:"id" json:"id"`
	Question string `yaml:"question" json:"question"`
	Answer   string `yaml:"answer" json:"answer"`
}

// Commitment is one of the brand promises.
type Commitment struct {
	Title       string   `yaml:"title" json:"title"`
	Description string   `yaml:"description" json:"description"`
	Details     []string `yaml:"details" json:"details"`
}

// ContactInfo holds the support contact details.
type ContactInfo struct {
	Email   string `yaml:"email" json:"email"`
	Phone   string `yaml:"phone" json:"phone"`
	Hours   string `yaml:"hours" json:"hours"`
	Address string `yaml:"address" json:"address"`
}
