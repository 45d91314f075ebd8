package assistant

// FAQ is a store policy entry indexed for the assistant.
type FAQ struct {
	Topic    string
	Question string
	Answer   string
}

// StoreDescription is the general store blurb.
const StoreDescription = "Welcome to ShopHub, your premier online shopping destination for quality products at affordable prices. " +
	"Shop with confidence knowing that we prioritize your satisfaction and security."

// FAQs are indexed alongside the catalog.
var FAQs = []FAQ{
	{
		Topic:    "shipping",
		Question: "What are your shipping policies?",
		Answer: "We offer free standard shipping on all orders over $50. Orders are typically processed within 1-2 business days " +
			"and delivered within 5-7 business days. Express shipping is available for an additional fee and arrives within 2-3 business days.",
	},
	{
		Topic:    "returns",
		Question: "What is your return policy?",
		Answer: "We accept returns within 30 days of purchase for a full refund. Items must be unused, in original packaging, " +
			"and in the same condition you received them. Return shipping is free for defective or incorrect items. " +
			"Customer-initiated returns may incur a small restocking fee.",
	},
	{
		Topic:    "payment",
		Question: "What payment methods do you accept?",
		Answer: "We accept all major credit cards (Visa, Mastercard, American Express, Discover), PayPal, Apple Pay, and Google Pay. " +
			"All transactions are encrypted and secure. We do not store your payment information on our servers.",
	},
	{
		Topic:    "tracking",
		Question: "How can I track my order?",
		Answer: "Once your order ships, you'll receive a confirmation email with a tracking number. You can track your order status " +
			"in real-time by clicking the tracking link in the email or visiting the 'My Orders' section of your account. " +
			"Tracking information is typically available within 24 hours of shipment.",
	},
	{
		Topic:    "account",
		Question: "Do I need an account to shop?",
		Answer: "No, you can checkout as a guest. However, creating an account allows you to track orders, save items to your wishlist, " +
			"store shipping addresses, and receive exclusive offers. Account creation is free and takes less than a minute.",
	},
	{
		Topic:    "customer_service",
		Question: "How do I contact customer service?",
		Answer: "Our customer service team is available Monday-Friday, 9 AM to 6 PM EST. You can reach us via email at support@shophub.com, " +
			"phone at 1-800-SHOP-HUB, or through our live chat feature. We typically respond to emails within 24 hours.",
	},
	{
		Topic:    "discounts",
		Question: "Do you offer discounts or promotions?",
		Answer: "Yes! We regularly offer seasonal sales, flash deals, and promotional codes. Sign up for our newsletter to receive " +
			"exclusive discounts and be the first to know about upcoming sales. First-time customers receive 10% off their first order.",
	},
	{
		Topic:    "security",
		Question: "Is my personal information secure?",
		Answer: "Absolutely. We use industry-standard SSL encryption to protect your personal and payment information. " +
			"We never sell or share your data with third parties. Our website is PCI-DSS compliant and undergoes regular security audits.",
	},
	{
		Topic:    "international",
		Question: "Do you ship internationally?",
		Answer: "Currently, we ship to the United States, Canada, and the United Kingdom. International shipping rates vary by location " +
			"and are calculated at checkout. Delivery times for international orders range from 7-14 business days. Customs fees may apply.",
	},
	{
		Topic:    "product_quality",
		Question: "What if I receive a damaged or defective product?",
		Answer: "We're sorry if that happens! Contact us immediately with photos of the damage. We'll arrange a free return and send " +
			"a replacement or issue a full refund, including original shipping costs. Your satisfaction is our priority.",
	},
}
