package cdp

import (
	"encoding/json"
	"fmt"
)

// All scripts are closure-free IIFEs: each evaluation runs against a fresh,
// untracked document with no retained element handles. Per-probe DOM
// failures (cross-origin frames, detached nodes) are caught inside the
// script and reported as "not found"; only a failed evaluation as a whole
// reaches Go.

// snapshotScript returns the viewport observations plus the metrics of every
// scroll-candidate element. Element indexes are positions in the document's
// full element list and are only meaningful against the same DOM instance.
const snapshotScript = `(() => {
	const root = document.documentElement;
	const vw = window.innerWidth, vh = window.innerHeight;
	const all = document.querySelectorAll('*');
	const elements = [];
	for (let i = 0; i < all.length; i++) {
		const el = all[i];
		const cs = window.getComputedStyle(el);
		const oy = cs.overflowY, ox = cs.overflowX;
		const scrollable = oy === 'auto' || oy === 'scroll' || ox === 'auto' || ox === 'scroll';
		if (!scrollable) continue;
		if (el.scrollHeight <= el.clientHeight) continue;
		const r = el.getBoundingClientRect();
		const ix = Math.max(0, Math.min(r.right, vw) - Math.max(r.left, 0));
		const iy = Math.max(0, Math.min(r.bottom, vh) - Math.max(r.top, 0));
		elements.push({
			index: i,
			overflowX: ox,
			overflowY: oy,
			scrollHeight: el.scrollHeight,
			clientHeight: el.clientHeight,
			scrollTop: el.scrollTop,
			width: r.width,
			height: r.height,
			coverage: vw * vh > 0 ? (ix * iy) / (vw * vh) : 0,
		});
	}
	return {
		viewport: {
			scrollY: window.scrollY,
			clientHeight: vh,
			clientWidth: vw,
			documentHeight: Math.max(root.scrollHeight, document.body ? document.body.scrollHeight : 0),
		},
		elements: elements,
	};
})()`

// signalsScriptTmpl takes (embedTypes, containerSelectors, viewerGlobals)
// as JSON arrays.
const signalsScriptTmpl = `(() => {
	const embedTypes = %s;
	const selectors = %s;
	const globals = %s;
	let hasEmbed = false;
	for (const el of document.querySelectorAll('embed, object')) {
		const t = (el.type || '').toLowerCase();
		if (embedTypes.indexOf(t) !== -1) { hasEmbed = true; break; }
	}
	if (!hasEmbed) {
		for (const f of document.querySelectorAll('iframe')) {
			const src = (f.src || '').toLowerCase().split('?')[0].split('#')[0];
			if (src.endsWith('.pdf')) { hasEmbed = true; break; }
		}
	}
	const hasGlobal = globals.some(g => typeof window[g] !== 'undefined');
	const hasContainer = selectors.some(s => {
		try { return document.querySelector(s) !== null; } catch (e) { return false; }
	});
	return {
		url: location.href,
		contentType: document.contentType || '',
		hasPluginEmbed: hasEmbed,
		hasViewerGlobal: hasGlobal,
		hasViewerContainer: hasContainer,
	};
})()`

// viewerStateScriptTmpl takes (viewerGlobals, containerSelectors).
const viewerStateScriptTmpl = `(() => {
	const globals = %s;
	const selectors = %s;
	for (const g of globals) {
		const app = window[g];
		if (!app) continue;
		let pageNum = 0;
		if (typeof app.page === 'number') pageNum = app.page;
		else if (app.pdfViewer && typeof app.pdfViewer.currentPageNumber === 'number')
			pageNum = app.pdfViewer.currentPageNumber;
		let scrollTop = 0;
		if (app.pdfViewer && app.pdfViewer.container) scrollTop = app.pdfViewer.container.scrollTop;
		else {
			for (const s of selectors) {
				try {
					const c = document.querySelector(s);
					if (c) { scrollTop = c.scrollTop; break; }
				} catch (e) {}
			}
		}
		return {found: true, currentPage: Math.floor(pageNum), scrollTop: scrollTop};
	}
	return {found: false, currentPage: 0, scrollTop: 0};
})()`

// goToPageScriptTmpl takes (viewerGlobals, page).
const goToPageScriptTmpl = `(() => {
	const globals = %s;
	for (const g of globals) {
		const app = window[g];
		if (!app) continue;
		try {
			if ('page' in app) { app.page = %d; return true; }
			if (app.pdfViewer) { app.pdfViewer.currentPageNumber = %d; return true; }
		} catch (e) { return false; }
	}
	return false;
})()`

// setViewerScrollScriptTmpl takes (viewerGlobals, containerSelectors,
// offset, behavior).
const setViewerScrollScriptTmpl = `(() => {
	const globals = %s;
	const selectors = %s;
	const apply = (c) => { try { c.scrollTo({top: %s, behavior: '%s'}); return true; } catch (e) { return false; } };
	for (const g of globals) {
		const app = window[g];
		if (app && app.pdfViewer && app.pdfViewer.container) return apply(app.pdfViewer.container);
	}
	for (const s of selectors) {
		try {
			const c = document.querySelector(s);
			if (c) return apply(c);
		} catch (e) {}
	}
	return false;
})()`

// containerScrollScriptTmpl takes (containerSelectors).
const containerScrollScriptTmpl = `(() => {
	const selectors = %s;
	for (const s of selectors) {
		try {
			const c = document.querySelector(s);
			if (c && c.scrollHeight > c.clientHeight)
				return {found: true, selector: s, scrollTop: c.scrollTop};
		} catch (e) {}
	}
	return {found: false, selector: '', scrollTop: 0};
})()`

// setContainerScrollScriptTmpl takes (containerSelectors, offset, behavior).
const setContainerScrollScriptTmpl = `(() => {
	const selectors = %s;
	for (const s of selectors) {
		try {
			const c = document.querySelector(s);
			if (c && c.scrollHeight > c.clientHeight) {
				c.scrollTo({top: %s, behavior: '%s'});
				return true;
			}
		} catch (e) {}
	}
	return false;
})()`

// frameScrollScript reads the first reachable sub-document's scroll.
// Cross-origin frames throw and are skipped.
const frameScrollScript = `(() => {
	for (const f of document.querySelectorAll('iframe, embed')) {
		try {
			const w = f.contentWindow;
			if (w && typeof w.scrollY === 'number') return {found: true, scrollY: w.scrollY};
		} catch (e) {}
	}
	return {found: false, scrollY: 0};
})()`

// setFrameScrollScriptTmpl takes (offset).
const setFrameScrollScriptTmpl = `(() => {
	for (const f of document.querySelectorAll('iframe, embed')) {
		try {
			const w = f.contentWindow;
			if (w && typeof w.scrollY === 'number') { w.scrollTo(0, %s); return true; }
		} catch (e) {}
	}
	return false;
})()`

// setWindowScrollScriptTmpl takes (offset, behavior).
const setWindowScrollScriptTmpl = `(() => {
	window.scrollTo({top: %s, behavior: '%s'});
	return true;
})()`

// setElementScrollScriptTmpl takes (index, offset, behavior).
const setElementScrollScriptTmpl = `(() => {
	const el = document.querySelectorAll('*')[%d];
	if (!el) return false;
	try { el.scrollTo({top: %s, behavior: '%s'}); } catch (e) { el.scrollTop = %s; }
	return true;
})()`

func jsonArray(items []string) string {
	data, err := json.Marshal(items)
	if err != nil {
		return "[]"
	}
	return string(data)
}

func jsNumber(v float64) string {
	return fmt.Sprintf("%g", v)
}

func behavior(smooth bool) string {
	if smooth {
		return "smooth"
	}
	return "auto"
}
