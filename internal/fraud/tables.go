package fraud

// Heuristic string tables for the metadata layer. These are data, not
// control flow, so they can be updated and tested independently of the
// scoring logic. All matching is case-insensitive substring matching.

// editingSoftware lists tool-name fragments that indicate the image went
// through a photo editor.
var editingSoftware = []string{
	"photoshop",
	"gimp",
	"paint.net",
	"affinity",
	"lightroom",
	"snapseed",
	"pixlr",
	"photoscape",
	"fotor",
}

// mobileBrands lists device make/model fragments of known mobile camera
// manufacturers.
var mobileBrands = []string{
	"iphone",
	"samsung",
	"google",
	"huawei",
	"xiaomi",
	"oppo",
	"vivo",
	"oneplus",
	"motorola",
	"nokia",
}

// safeSoftware lists fragments expected in software tags of unedited
// captures: device OS names, firmware identifiers, and manufacturer names.
var safeSoftware = []string{
	"ios",
	"android",
	"firmware",
	"camera",
	"iphone",
	"samsung",
	"google",
	"huawei",
}

// EXIF tag names the metadata layer inspects.
const (
	tagSoftware           = "Software"
	tagProcessingSoftware = "ProcessingSoftware"
	tagHostComputer       = "HostComputer"
	tagMake               = "Make"
	tagModel              = "Model"
	tagDateTime           = "DateTime"
	tagDateTimeOriginal   = "DateTimeOriginal"
	tagDateTimeDigitized  = "DateTimeDigitized"
)

var (
	// editorTagFields are checked against the editing-software denylist.
	editorTagFields = []string{tagSoftware, tagProcessingSoftware, tagHostComputer}
	// deviceTagFields are checked against the mobile-brand allowlist.
	deviceTagFields = []string{tagModel, tagMake}
	// softwareTagFields are checked against the safe-software allowlist.
	softwareTagFields = []string{tagSoftware, tagProcessingSoftware}
	// captureTimeFields are tried in order when computing photo age.
	captureTimeFields = []string{tagDateTime, tagDateTimeOriginal, tagDateTimeDigitized}
)
