package scraper

// CSS selectors for the marketplace detail pages. The site ships hashed CSS
// module class names; when a deploy rotates them these are the only lines
// that should need touching.

// detailButtonSelectors open the bottom-sheet with the full spec list.
// Ordered by reliability; each is tried against every visible match.
var detailButtonSelectors = []string{
	".DetailSummary_btn_detail__msm-h",
}

const (
	// Main page
	selTitleSpans   = ".DetailSummary_tit_car__0OEVh > span"
	selPrice        = ".DetailLeadCase_point__vdG4b"
	selSummaryItems = ".DetailSummary_define_summary__NOYid > dd"

	// Bottom-sheet modal
	selModalContainer = ".BottomSheet-module_bottom_sheet__LeljN"
	selModalItems     = "li"
	selModalTitle     = "strong"
	selModalValue     = "span.DetailSpec_txt__NGapF"

	// Photo carousel
	selSliderContainer = ".swiper-wrapper"
	selSliderImages    = ".swiper-wrapper img[class*=DetailCarPhotoPc_thumb__]"

	// Options sub-page
	selOptionItems = `[class*="PeerIntoCarOptions_"] > a`
)

const (
	detailURLFormat  = "https://fem.encar.com/cars/detail/%s?carid=%s"
	optionsURLFormat = "https://fem.encar.com/cars/option/%s"
)
