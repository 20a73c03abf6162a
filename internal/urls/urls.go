package urls

// Storefront pages. All URLs point to https://midnightbrew.jp/

// Storefront is the landing page with plans and the coffee of the month.
const Storefront = "https://midnightbrew.jp/"

// HelpCenter answers questions about deliveries, billing and plan changes.
const HelpCenter = "https://midnightbrew.jp/help/"

// ContactPage is the web version of the contact form.
const ContactPage = "https://midnightbrew.jp/contact/"

// Terms is the subscription terms of service.
const Terms = "https://midnightbrew.jp/legal/terms/"

// PrivacyPolicy explains how signup and contact details are handled.
const PrivacyPolicy = "https://midnightbrew.jp/legal/privacy/"

// ServerGuide covers running midnightbrew-server on a local network.
const ServerGuide = "https://midnightbrew.jp/docs/server/"
