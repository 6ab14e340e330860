package folio

import (
	"github.com/gompdf/folio/pkg/api"
)

type Converter = api.Converter
type Options = api.Options
type Option = api.Option
type Profile = api.Profile
type Result = api.Result
type Template = api.Template

func New(opts ...Option) *Converter             { return api.New(opts...) }
func NewWithOptions(options Options) *Converter { return api.NewWithOptions(options) }
func DefaultOptions() Options                   { return api.DefaultOptions() }
func DefaultProfile() *Profile                  { return api.DefaultProfile() }

var (
	LoadProfile        = api.LoadProfile
	ParseProfile       = api.ParseProfile
	WithPageSize       = api.WithPageSize
	WithMargin         = api.WithMargin
	WithUnit           = api.WithUnit
	WithScale          = api.WithScale
	WithCaptureWidth   = api.WithCaptureWidth
	WithBackground     = api.WithBackground
	WithResourcePath   = api.WithResourcePath
	WithBaseURL        = api.WithBaseURL
	WithTitle          = api.WithTitle
	WithAuthor         = api.WithAuthor
	WithSubject        = api.WithSubject
	WithKeywords       = api.WithKeywords
	WithLogger         = api.WithLogger
	WithPageSizeA4     = api.WithPageSizeA4
	WithPageSizeLetter = api.WithPageSizeLetter
	WithPageSizeLegal  = api.WithPageSizeLegal
)

const (
	PageSizeA4Width      = api.PageSizeA4Width
	PageSizeA4Height     = api.PageSizeA4Height
	PageSizeLetterWidth  = api.PageSizeLetterWidth
	PageSizeLetterHeight = api.PageSizeLetterHeight
	PageSizeLegalWidth   = api.PageSizeLegalWidth
	PageSizeLegalHeight  = api.PageSizeLegalHeight
)
