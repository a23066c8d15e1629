package tooling

import (
	"regexp"
	"strings"
)

// Category is a fixed tooling classification. The declaration order is
// both the rule evaluation order and the title priority order.
type Category int

const (
	CategoryFrontend Category = iota
	CategoryBackend
	CategoryDatabase
	CategoryAuthentication
	CategoryEmail
	CategoryPayment
	CategoryValidation
	CategoryTesting
	CategoryBuild
	CategoryLinting
	CategoryFormatting
	CategoryTypeSystem
	CategoryDeployment
	CategoryCICD
	CategoryScheduler
	CategoryFileStorage
	CategoryObservability
	CategoryOther
)

var categoryNames = [...]string{
	CategoryFrontend:       "Frontend",
	CategoryBackend:        "Backend",
	CategoryDatabase:       "Database",
	CategoryAuthentication: "Authentication",
	CategoryEmail:          "Email",
	CategoryPayment:        "Payments",
	CategoryValidation:     "Validation",
	CategoryTesting:        "Testing",
	CategoryBuild:          "Build",
	CategoryLinting:        "Linting",
	CategoryFormatting:     "Formatting",
	CategoryTypeSystem:     "Type Safety",
	CategoryDeployment:     "Deployment",
	CategoryCICD:           "CI/CD",
	CategoryScheduler:      "Scheduling",
	CategoryFileStorage:    "File Storage",
	CategoryObservability:  "Observability",
	CategoryOther:          "Other",
}

func (c Category) String() string {
	if c < 0 || int(c) >= len(categoryNames) {
		return "Unknown"
	}
	return categoryNames[c]
}

// CategoryRule matches lower-cased names into a category
type CategoryRule struct {
	Category Category
	Pattern  *regexp.Regexp
}

// CategoryRules are tested in order; the first match wins
var CategoryRules = []CategoryRule{
	{CategoryFrontend, regexp.MustCompile(`^(react|react-dom|next|vue|nuxt|svelte|@sveltejs/kit|@angular/core|solid-js|preact|gatsby|@remix-run/react|astro|ember-source|alpinejs|jquery|tailwindcss|tailwind css|@mui/material|@chakra-ui/react|styled-components|bootstrap)$`)},
	{CategoryBackend, regexp.MustCompile(`^(express|koa|fastify|@nestjs/core|@nestjs/common|hapi|@hapi/hapi|restify|hono|@apollo/server|apollo-server(-express)?|graphql-yoga|@trpc/server|socket\.io|body-parser|cors|helmet|sails|@adonisjs/core)$`)},
	{CategoryDatabase, regexp.MustCompile(`^(mongoose|mongodb|pg|postgres|mysql2?|sqlite3|better-sqlite3|prisma|@prisma/client|sequelize|typeorm|knex|drizzle-orm|redis|ioredis|@supabase/supabase-js|firebase|firebase-admin|dynamoose|@planetscale/database|@neondatabase/serverless|objection)$`)},
	{CategoryAuthentication, regexp.MustCompile(`^(passport(-[\w-]+)?|jsonwebtoken|jose|bcrypt(js)?|argon2|next-auth|@auth/[\w-]+|@clerk/[\w-]+|@auth0/[\w-]+|auth0|express-session|cookie-session|lucia|oauth4webapi)$`)},
	{CategoryEmail, regexp.MustCompile(`^(nodemailer|@sendgrid/mail|mailgun(-js|\.js)?|resend|postmark|@react-email/[\w-]+|react-email|mjml|email-templates|@aws-sdk/client-ses)$`)},
	{CategoryPayment, regexp.MustCompile(`^(stripe|@stripe/[\w-]+|paypal-rest-sdk|@paypal/[\w-]+|braintree|razorpay|@paddle/[\w-]+|@lemonsqueezy/[\w-]+|square)$`)},
	{CategoryValidation, regexp.MustCompile(`^(joi|@hapi/joi|yup|zod|class-validator|ajv|express-validator|validator|superstruct|valibot)$`)},
	{CategoryTesting, regexp.MustCompile(`^(jest|ts-jest|babel-jest|vitest|mocha|chai|sinon|jasmine|karma|ava|tap|cypress|playwright|@playwright/test|@testing-library/[\w-]+|supertest|enzyme|nyc|c8|msw|nock)$`)},
	{CategoryBuild, regexp.MustCompile(`^(webpack(-cli|-dev-server)?|vite|rollup|esbuild|parcel|babel|@babel/[\w-]+|turbo|tsup|swc|@swc/core|postcss|autoprefixer|nodemon|concurrently|make|lerna|nx)$`)},
	{CategoryLinting, regexp.MustCompile(`^(eslint|eslint-[\w-]+|@eslint/[\w-]+|@typescript-eslint/[\w-]+|tslint|stylelint(-[\w-]+)?|golangci-lint|lint-staged|standard|xo|@biomejs/biome|oxlint)$`)},
	{CategoryFormatting, regexp.MustCompile(`^(prettier|prettier-plugin-[\w-]+|@prettier/[\w-]+|editorconfig|dprint)$`)},
	{CategoryTypeSystem, regexp.MustCompile(`^(typescript|@types/[\w.-]+|ts-node|tsx|flow-bin|@tsconfig/[\w-]+)$`)},
	{CategoryDeployment, regexp.MustCompile(`^(vercel|@vercel/[\w-]+|netlify|netlify-cli|fly\.io|render|heroku|serverless|docker|docker compose|pm2|aws-cdk|aws-cdk-lib|@pulumi/[\w-]+|wrangler)$`)},
	{CategoryCICD, regexp.MustCompile(`^(github actions|gitlab ci|circleci|jenkins|travis ci|azure pipelines|husky|pre-commit|semantic-release|@semantic-release/[\w-]+|@commitlint/[\w-]+|commitizen|release-it)$`)},
	{CategoryScheduler, regexp.MustCompile(`^(node-cron|cron|croner|agenda|bull|bullmq|bee-queue|node-schedule|later|@nestjs/schedule|inngest)$`)},
	{CategoryFileStorage, regexp.MustCompile(`^(multer|aws-sdk|@aws-sdk/client-s3|@aws-sdk/s3-request-presigner|cloudinary|@google-cloud/storage|minio|uploadthing|@uploadthing/[\w-]+|formidable|busboy|@azure/storage-blob)$`)},
	{CategoryObservability, regexp.MustCompile(`^(winston|pino(-[\w-]+)?|morgan|bunyan|@sentry/[\w-]+|dd-trace|newrelic|prom-client|@opentelemetry/[\w-]+|@datadog/[\w-]+|loglevel|@logtail/[\w-]+)$`)},
}

// Categorize returns the first category whose rule matches name, or
// CategoryOther.
func Categorize(name string) Category {
	key := strings.ToLower(strings.TrimSpace(name))
	for _, rule := range CategoryRules {
		if rule.Pattern.MatchString(key) {
			return rule.Category
		}
	}
	return CategoryOther
}

// Grouping is names bucketed by category, keeping input order within each
type Grouping map[Category][]string

// Group categorizes every name
func Group(names []string) Grouping {
	g := make(Grouping)
	for _, n := range names {
		c := Categorize(n)
		g[c] = append(g[c], n)
	}
	return g
}

// Active returns the represented categories other than CategoryOther, in
// priority order.
func (g Grouping) Active() []Category {
	var active []Category
	for c := CategoryFrontend; c < CategoryOther; c++ {
		if len(g[c]) > 0 {
			active = append(active, c)
		}
	}
	return active
}
