package mopub

import (
	"fmt"
	"strings"

	"github.com/bidconnect/exchange-connector/adapters"
	"github.com/bidconnect/exchange-connector/agentconfig"
	"github.com/bidconnect/exchange-connector/openrtb_ext"
	"github.com/prebid/openrtb/v20/adcom1"
	"github.com/tidwall/gjson"
)

const (
	campaignPath = "providerConfig.mopub."
	creativePath = "creative[].providerConfig.mopub."
)

// CampaignCompatibility requires providerConfig.mopub.seat to be a non-empty string or a number.
func (a *MoPubAdapter) CampaignCompatibility(cfg *agentconfig.AgentConfig, includeReasons bool) adapters.CampaignCompatibility {
	result := adapters.NewCompatibility[openrtb_ext.CampaignInfo](includeReasons)
	path := campaignPath + "seat"

	pconf := cfg.ProviderConfigFor(a.name)
	if len(pconf) == 0 {
		result.Fail(path, adapters.FieldMissing, path+" must be specified")
		return result
	}
	if !gjson.ValidBytes(pconf) {
		result.Fail(path, adapters.FieldParseError, path+" parsing error: providerConfig.mopub is not valid JSON")
		return result
	}
	root := gjson.ParseBytes(pconf)
	if !root.IsObject() {
		result.Fail(path, adapters.FieldParseError, path+" parsing error: providerConfig.mopub must be an object")
		return result
	}

	seat := root.Get("seat")
	switch {
	case !seat.Exists():
		result.Fail(path, adapters.FieldMissing, path+" must be specified")
	case seat.Type == gjson.Null || (seat.Type == gjson.String && seat.Str == ""):
		result.Fail(path, adapters.FieldInvalid, path+" is null")
	case seat.Type == gjson.String:
		result.Pass(path)
		result.Info.MoPub = &openrtb_ext.ExtCampaignMoPub{Seat: seat.Str}
	case seat.Type == gjson.Number:
		result.Pass(path)
		result.Info.MoPub = &openrtb_ext.ExtCampaignMoPub{Seat: seat.Raw}
	default:
		result.Fail(path, adapters.FieldParseError, fmt.Sprintf("%s parsing error: expected a string or a number, got %s", path, describe(seat)))
	}
	return result
}

// CreativeCompatibility checks, in order, attr, adm, crid, adomain, iurl and adid. Every
// check runs even when an earlier one failed, and the rule checks (macro present, value
// not empty) run even when their field is missing. Info holds whatever parsed.
func (a *MoPubAdapter) CreativeCompatibility(creative *agentconfig.Creative, includeReasons bool) adapters.CreativeCompatibility {
	result := adapters.NewCompatibility[openrtb_ext.CreativeInfo](includeReasons)
	info := &openrtb_ext.ExtCreativeMoPub{}
	result.Info.MoPub = info

	pconf := gjson.Result{}
	if raw := creative.ProviderConfigFor(a.name); len(raw) > 0 && gjson.ValidBytes(raw) {
		pconf = gjson.ParseBytes(raw)
	}
	fields := creativeFields{result: &result, pconf: pconf}

	// 1. attr turns into exchange-side creative attribute filters
	fields.get("attr", func(value gjson.Result) error {
		attr, err := parseAttr(value)
		info.Attr = attr
		return err
	})

	// 2. adm must carry the encrypted price macro
	fields.get("adm", func(value gjson.Result) error {
		adm, err := parseString(value)
		info.AdM = adm
		return err
	})
	if !containsPriceMacro(info.AdM) {
		fields.fail("adm", adapters.FieldInvalid, "ad markup must contain encrypted win price macro "+openrtb_ext.MoPubPriceMacro)
	}

	// 3. crid
	fields.get("crid", func(value gjson.Result) error {
		crid, err := parseID(value)
		info.CrID = crid
		return err
	})
	if info.CrID == "" {
		fields.fail("crid", adapters.FieldInvalid, "is null")
	}

	// 4. adomain
	fields.get("adomain", func(value gjson.Result) error {
		adomain, err := parseStrings(value)
		info.ADomain = adomain
		return err
	})
	if len(info.ADomain) == 0 {
		fields.fail("adomain", adapters.FieldInvalid, "is empty")
	}

	// 5. iurl
	fields.get("iurl", func(value gjson.Result) error {
		iurl, err := parseString(value)
		info.IURL = iurl
		return err
	})
	if info.IURL == "" {
		fields.fail("iurl", adapters.FieldInvalid, "is empty")
	}

	// 6. adid
	fields.get("adid", func(value gjson.Result) error {
		adid, err := parseID(value)
		info.AdID = adid
		return err
	})

	return result
}

type creativeFields struct {
	result *adapters.CreativeCompatibility
	pconf  gjson.Result
}

// get runs parse on the named field, or records it as missing.
func (f creativeFields) get(field string, parse func(value gjson.Result) error) {
	path := creativePath + field
	value := f.pconf.Get(field)
	if !f.pconf.IsObject() || !value.Exists() {
		f.result.Fail(path, adapters.FieldMissing, path+" must be specified")
		return
	}
	if err := parse(value); err != nil {
		f.result.Fail(path, adapters.FieldParseError, path+": error parsing field: "+err.Error())
		return
	}
	f.result.Pass(path)
}

func (f creativeFields) fail(field string, outcome adapters.FieldOutcome, rule string) {
	path := creativePath + field
	f.result.Fail(path, outcome, path+" "+rule)
}

func containsPriceMacro(adm string) bool {
	return strings.Contains(adm, openrtb_ext.MoPubPriceMacro)
}

// parseString accepts a JSON string. null reads as the empty string.
func parseString(value gjson.Result) (string, error) {
	switch value.Type {
	case gjson.String:
		return value.Str, nil
	case gjson.Null:
		return "", nil
	}
	return "", fmt.Errorf("expected a string, got %s", describe(value))
}

// parseID accepts a string or a number. null reads as the empty id.
func parseID(value gjson.Result) (string, error) {
	switch value.Type {
	case gjson.String:
		return value.Str, nil
	case gjson.Number:
		return value.Raw, nil
	case gjson.Null:
		return "", nil
	}
	return "", fmt.Errorf("expected a string or a number, got %s", describe(value))
}

// parseStrings accepts an array of strings. null reads as an empty array.
func parseStrings(value gjson.Result) ([]string, error) {
	if value.Type == gjson.Null {
		return nil, nil
	}
	if !value.IsArray() {
		return nil, fmt.Errorf("expected an array of strings, got %s", describe(value))
	}
	var strs []string
	var err error
	value.ForEach(func(_, elem gjson.Result) bool {
		if elem.Type != gjson.String {
			err = fmt.Errorf("expected an array of strings, found %s", describe(elem))
			return false
		}
		strs = append(strs, elem.Str)
		return true
	})
	if err != nil {
		return nil, err
	}
	return strs, nil
}

// parseAttr accepts an array of integer creative attributes. null reads as no attributes.
func parseAttr(value gjson.Result) ([]adcom1.CreativeAttribute, error) {
	if value.Type == gjson.Null {
		return nil, nil
	}
	if !value.IsArray() {
		return nil, fmt.Errorf("expected an array of integers, got %s", describe(value))
	}
	var attr []adcom1.CreativeAttribute
	var err error
	value.ForEach(func(_, elem gjson.Result) bool {
		if elem.Type != gjson.Number || elem.Num != float64(int64(elem.Num)) {
			err = fmt.Errorf("expected an array of integers, found %s", describe(elem))
			return false
		}
		attr = append(attr, adcom1.CreativeAttribute(elem.Int()))
		return true
	})
	if err != nil {
		return nil, err
	}
	return attr, nil
}

func describe(value gjson.Result) string {
	switch {
	case value.IsObject():
		return "an object"
	case value.IsArray():
		return "an array"
	case value.IsBool():
		return "a boolean"
	case value.Type == gjson.Null:
		return "null"
	case value.Type == gjson.Number:
		return "number " + value.Raw
	case value.Type == gjson.String:
		return fmt.Sprintf("string %q", value.Str)
	}
	return value.Raw
}
