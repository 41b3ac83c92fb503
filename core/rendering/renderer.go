/*
SPDX-License-Identifier: Apache-2.0

Copyright 2024 The Taxinomia Authors

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    https://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package rendering

import (
	"embed"
	"fmt"
	"io"

	"github.com/google/safehtml/template"

	"github.com/google/taxinomia-loans/core/views"
)

//go:embed templates/*
var templateFS embed.FS

// PageRenderer handles rendering of dashboard view models to HTML
type PageRenderer struct {
	homeTemplate     *template.Template
	analysisTemplate *template.Template
	aboutTemplate    *template.Template
}

// NewPageRenderer parses the embedded page templates
func NewPageRenderer() (*PageRenderer, error) {
	trustedFS := template.TrustedFSFromEmbed(templateFS)

	parse := func(name string) (*template.Template, error) {
		t, err := template.New(name).ParseFS(trustedFS, "templates/"+name, "templates/layout.html")
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", name, err)
		}
		return t, nil
	}

	home, err := parse("home.html")
	if err != nil {
		return nil, err
	}
	analysis, err := parse("analysis.html")
	if err != nil {
		return nil, err
	}
	about, err := parse("about.html")
	if err != nil {
		return nil, err
	}

	return &PageRenderer{
		homeTemplate:     home,
		analysisTemplate: analysis,
		aboutTemplate:    about,
	}, nil
}

// RenderHome renders the landing page
func (r *PageRenderer) RenderHome(w io.Writer, vm views.HomeViewModel) error {
	return r.homeTemplate.Execute(w, vm)
}

// RenderAnalysis renders the analysis dashboard
func (r *PageRenderer) RenderAnalysis(w io.Writer, vm views.AnalysisViewModel) error {
	return r.analysisTemplate.Execute(w, vm)
}

// RenderAbout renders the about page
func (r *PageRenderer) RenderAbout(w io.Writer, vm views.AboutViewModel) error {
	return r.aboutTemplate.Execute(w, vm)
}
