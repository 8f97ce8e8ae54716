package validate

import (
	"fmt"
	"strings"

	"vidcompose/internal/effects"
	"vidcompose/pkg/document"
)

// Overlay element types.
const (
	TypeVideo = "video"
	TypeImage = "image"
	TypeGIF   = "gif"
	TypeText  = "text"
)

// assetTableKeys lists the plural keys of the declared asset table.
var assetTableKeys = []string{"videos", "images", "audios", "gifs"}

// CheckStructure checks section shapes, asset tables, element types, and
// effect and animation parameters. Run it on the resolved document so
// placeholder values have their final types.
func CheckStructure(doc document.Node) Report {
	if doc.Kind() != document.KindMap {
		return nil
	}
	var report Report
	report = append(report, checkAssetTable(doc)...)
	report = append(report, checkTrack(doc, SectionEditing)...)
	report = append(report, checkOverlays(doc)...)
	report = append(report, checkTrack(doc, SectionAudio)...)
	if out, ok := doc.Get(SectionOutput); ok && out.Kind() != document.KindMap {
		report = append(report, Errorf(CodeInvalidStructure, SectionOutput, "section must be a map, got %s", out.Kind()))
	}
	return report
}

func checkAssetTable(doc document.Node) Report {
	table, ok := doc.Get(SectionAssets)
	if !ok {
		return nil
	}
	if table.Kind() != document.KindMap {
		return Report{Errorf(CodeInvalidStructure, SectionAssets, "section must be a map, got %s", table.Kind())}
	}

	var report Report
	for _, key := range assetTableKeys {
		list, ok := table.Get(key)
		if !ok || list.IsNull() {
			continue
		}
		subject := SectionAssets + "." + key
		if list.Kind() != document.KindSequence {
			report = append(report, Errorf(CodeInvalidStructure, subject, "must be a sequence, got %s", list.Kind()))
			continue
		}
		seen := map[string]int{}
		for i, entry := range list.Items() {
			at := fmt.Sprintf("%s[%d]", subject, i)
			if entry.Kind() != document.KindMap {
				report = append(report, Errorf(CodeInvalidStructure, at, "asset entry must be a map"))
				continue
			}
			name, _ := entry.GetString("name")
			if name == "" {
				report = append(report, Errorf(CodeInvalidStructure, at, "asset entry needs a name"))
			} else if first, dup := seen[name]; dup {
				report = append(report, Errorf(CodeInvalidStructure, at, "asset %q already declared at %s[%d]", name, subject, first))
			} else {
				seen[name] = i
			}
			if path, _ := entry.GetString("path"); path == "" {
				report = append(report, Errorf(CodeInvalidStructure, at, "asset entry needs a path"))
			}
		}
	}
	return report
}

func sectionItems(doc document.Node, section string) ([]document.Node, Report) {
	list, ok := doc.Get(section)
	if !ok || list.IsNull() {
		return nil, nil
	}
	if list.Kind() != document.KindSequence {
		return nil, Report{Errorf(CodeInvalidStructure, section, "section must be a sequence, got %s", list.Kind())}
	}
	return list.Items(), nil
}

func checkTrack(doc document.Node, section string) Report {
	items, report := sectionItems(doc, section)
	for i, entry := range items {
		at := fmt.Sprintf("%s[%d]", section, i)
		if entry.Kind() != document.KindMap {
			report = append(report, Errorf(CodeInvalidStructure, at, "entry must be a map, got %s", entry.Kind()))
			continue
		}
		if !entry.Has("asset") {
			report = append(report, Warnf(CodeMissingAsset, at, "entry has no asset and will be skipped"))
		}
		report = append(report, checkDecorations(entry, at)...)
	}
	return report
}

func checkOverlays(doc document.Node) Report {
	items, report := sectionItems(doc, SectionOverlays)
	for i, entry := range items {
		at := fmt.Sprintf("%s[%d]", SectionOverlays, i)
		if entry.Kind() != document.KindMap {
			report = append(report, Errorf(CodeInvalidStructure, at, "entry must be a map, got %s", entry.Kind()))
			continue
		}
		kind, _ := entry.GetString("type")
		switch kind {
		case TypeVideo, TypeImage, TypeGIF:
			if !entry.Has("asset") {
				report = append(report, Warnf(CodeMissingAsset, at, "%s overlay has no asset and will be skipped", kind))
			}
		case TypeText:
			if _, ok := entry.GetString("text"); !ok {
				report = append(report, Warnf(CodeInvalidStructure, at, "text overlay has no text"))
			}
		default:
			report = append(report, Warnf(CodeUnknownType, at, "overlay type %q is not supported and will be skipped", kind))
		}
		if pos, ok := entry.Get("position"); ok {
			if _, err := effects.ParsePosition(pos); err != nil {
				report = append(report, Warnf(CodeInvalidPosition, at, "%v; using center", err))
			}
		}
		report = append(report, checkDecorations(entry, at)...)
	}
	return report
}

func checkDecorations(entry document.Node, at string) Report {
	var report Report
	if raw, ok := entry.Get("effects"); ok {
		chain, errs := effects.ParseChain(raw)
		for _, err := range errs {
			report = append(report, Warnf(CodeInvalidEffect, at, "%v", err))
		}
		for i, spec := range chain {
			if !spec.Known() {
				report = append(report, Warnf(CodeInvalidEffect, fmt.Sprintf("%s.effects[%d]", at, i), "effect %q is not recognised and is passed through (known: %s)", spec.Kind, knownEffectList()))
				continue
			}
			for _, problem := range spec.Check() {
				report = append(report, Warnf(CodeInvalidEffect, fmt.Sprintf("%s.effects[%d]", at, i), "%s: %s", spec.Kind, problem))
			}
		}
	}
	if raw, ok := entry.Get("animation"); ok && !raw.IsNull() {
		anim, err := effects.ParseAnimation(raw)
		if err != nil {
			report = append(report, Warnf(CodeInvalidAnimation, at, "%v", err))
			return report
		}
		if !anim.Known() {
			report = append(report, Warnf(CodeInvalidAnimation, at+".animation", "animation %q is not recognised and is passed through", anim.Kind))
		}
		for _, problem := range anim.Check() {
			report = append(report, Warnf(CodeInvalidAnimation, at+".animation", "%s: %s", anim.Kind, problem))
		}
	}
	return report
}

func knownEffectList() string {
	kinds := effects.KnownEffects()
	names := make([]string, len(kinds))
	for i, k := range kinds {
		names[i] = string(k)
	}
	return strings.Join(names, ", ")
}
