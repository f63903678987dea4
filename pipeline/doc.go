// Copyright 2026 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package pipeline orchestrates document processing.
//
// A pipeline takes a raw document through four stages: it assigns a
// processing ID and records the document's metadata, classifies format and
// intent, routes the document to the matching extraction agent, and stores
// the agent's record in shared memory. Batches run concurrently on a worker
// pool while preserving input order in the results.
package pipeline
